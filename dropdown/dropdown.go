// Package dropdown renders a documentation version switcher into the
// navigation header of an HTML page.
//
// The version list is a flat JSON object of label to URL suffix, fetched on
// every call:
//
//	{"v0.12.0": "v0.12.0/", "master": "master/"}
//
// Build returns as soon as the fetch is issued. Once it settles the dropdown is
// populated, its button labelled, and the finished element appended to the
// page. Failures never escape Build; they only change the button label.
package dropdown

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// FallbackText labels the button when the version list is unavailable.
const FallbackText = "Other Versions Not Found"

type options struct {
	client      *http.Client
	logger      *zap.Logger
	headerClass string
	fallback    string
}

// Option configures Build.
type Option func(*options)

// WithClient sets the HTTP client used to fetch the version list.
func WithClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithHeaderClass overrides DefaultHeaderClass.
func WithHeaderClass(class string) Option {
	return func(o *options) { o.headerClass = class }
}

// WithFallbackText overrides FallbackText.
func WithFallbackText(text string) Option {
	return func(o *options) { o.fallback = text }
}

// Outcome is the settled result of a Build.
type Outcome struct {
	// Versions holds the fetched list on success.
	Versions VersionMap
	// Err is non-nil on failure and always matches ErrUnavailable.
	Err error
	// Attached counts the header elements the dropdown was appended to.
	Attached int
}

// Pending tracks a Build until it settles.
type Pending struct {
	done    chan struct{}
	outcome Outcome
}

// Done is closed once the dropdown has been attached.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the dropdown has been attached.
func (p *Pending) Wait() Outcome {
	<-p.done
	return p.outcome
}

// Build fetches the version list at jsonLocation and appends a dropdown to
// page linking every label to targetPrefix+path. The button reads buttonText
// if the fetch succeeds and the fallback text otherwise.
//
// Every call appends a new dropdown; nothing is deduplicated.
func Build(ctx context.Context, page *Page, jsonLocation, targetPrefix, buttonText string, opts ...Option) *Pending {
	o := options{
		client:      http.DefaultClient,
		logger:      zap.NewNop(),
		headerClass: DefaultHeaderClass,
		fallback:    FallbackText,
	}
	for _, fn := range opts {
		fn(&o)
	}
	logger := o.logger.With(zap.String("location", jsonLocation))

	w := newWidget()
	p := &Pending{done: make(chan struct{})}

	onData := func(versions VersionMap) {
		for _, v := range versions {
			logger.Debug("adding version", zap.String("label", v.Label), zap.String("path", v.Path))
			w.addLink(targetPrefix, v)
		}
		w.setLabel(buttonText)
		p.outcome.Versions = versions
	}
	onFailure := func(err error) {
		logger.Debug("version list unavailable", zap.Error(err))
		w.setLabel(o.fallback)
		p.outcome.Err = err
	}
	always := func() {
		defer close(p.done)
		if page == nil {
			return
		}
		n, err := page.attach(o.headerClass, w.container)
		if err != nil {
			logger.Warn("attaching dropdown", zap.Error(err))
		}
		if n == 0 {
			logger.Debug("no navigation header found", zap.String("class", o.headerClass))
		}
		p.outcome.Attached = n
	}

	go func() {
		defer always()

		versions, err := Fetch(ctx, o.client, jsonLocation)
		if err != nil {
			onFailure(err)
			return
		}
		onData(versions)
	}()
	return p
}
