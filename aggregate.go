package main

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/appscodelabs/vdropdown/dropdown"
	shell "github.com/codeskyblue/go-sh"
	"github.com/gohugoio/hugo/parser"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// VersionsFile is written next to the aggregated docs of every product and is
// what the dropdown fetches.
const VersionsFile = "versions.json"

var (
	aggregateConfig  string
	aggregateDir     string
	aggregateProduct string
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Collect the docs of every hosted product version into one tree",
	Long: `Clones every product repository, copies the docs directory of each version
with hostDocs into <dir>/<product>/docs/<branch>, prefixes absolute front matter
aliases with /<product>/<branch>, and writes <dir>/<product>/docs/versions.json
listing the versions flagged v-dropdown.`,
	Args: cobra.NoArgs,
	RunE: runAggregate,
}

func init() {
	rootCmd.AddCommand(aggregateCmd)
	aggregateCmd.Flags().StringVar(&aggregateConfig, "config", "products.json", "Products config (JSON or YAML)")
	aggregateCmd.Flags().StringVar(&aggregateDir, "dir", "docs", "Output directory")
	aggregateCmd.Flags().StringVar(&aggregateProduct, "product", "", "Only aggregate this product")
}

func runAggregate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(aggregateConfig)
	if err != nil {
		return err
	}

	dir, err := filepath.Abs(aggregateDir)
	if err != nil {
		return errors.Wrap(err, "resolving output directory")
	}
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	sh := shell.NewSession()
	sh.SetDir(dir)
	sh.ShowCMD = verbose

	names := make([]string, 0, len(cfg.Products))
	for name := range cfg.Products {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if aggregateProduct != "" && name != aggregateProduct {
			continue
		}
		p := cfg.Products[name]
		p.Name = name
		err = processProduct(p, dir, sh)
		if err != nil {
			return errors.Wrapf(err, "aggregating %s", name)
		}
	}
	return nil
}

func loadConfig(path string) (*DocAggregator, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}

	// JSON documents are valid YAML
	var cfg DocAggregator
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return &cfg, nil
}

func processProduct(p Product, rootDir string, sh *shell.Session) error {
	prjDir := filepath.Join(rootDir, p.Name)
	repoDir := filepath.Join(prjDir, "repo")
	docsDir := filepath.Join(prjDir, "docs")
	for _, d := range []string{prjDir, repoDir, docsDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	log := logger.With(zap.String("product", p.Name))

	if _, err := os.Stat(filepath.Join(repoDir, ".git")); err == nil {
		sh.SetDir(repoDir)
		err = sh.Command("git", "fetch", "--all", "--prune").Run()
		if err != nil {
			return errors.Wrap(err, "fetching repository")
		}
	} else {
		sh.SetDir(prjDir)
		err = sh.Command("git", "clone", p.GithubURL, repoDir).Run()
		if err != nil {
			return errors.Wrap(err, "cloning repository")
		}
	}

	for _, v := range p.Versions {
		if !v.HostDocs {
			continue
		}
		if v.DocsDir == "" {
			v.DocsDir = "docs"
		}

		sh.SetDir(repoDir)
		err := sh.Command("git", "checkout", v.Branch).Run()
		if err != nil {
			return errors.Wrapf(err, "checking out %s", v.Branch)
		}

		vDir := filepath.Join(docsDir, v.Branch)
		if err := os.RemoveAll(vDir); err != nil {
			return err
		}
		sh.SetDir(prjDir)
		err = sh.Command("cp", "-r", filepath.Join(repoDir, v.DocsDir), vDir).Run()
		if err != nil {
			return errors.Wrapf(err, "copying docs of %s", v.Branch)
		}

		err = filepath.Walk(vDir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() || !strings.HasSuffix(path, ".md") {
				return nil // skip
			}
			log.Debug("rewriting page", zap.String("page", path))
			return rewritePage(path, p.Name, v.Branch)
		})
		if err != nil {
			return errors.Wrapf(err, "walking %s", vDir)
		}
		log.Info("aggregated version", zap.String("branch", v.Branch))
	}

	return writeVersions(filepath.Join(docsDir, VersionsFile), productVersions(p))
}

// rewritePage prefixes the absolute aliases in the front matter of a markdown
// page with the product and branch it is now hosted under.
func rewritePage(path, product, branch string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}

	page, err := parser.ReadFrom(bytes.NewBuffer(data))
	if err != nil {
		return errors.Wrapf(err, "parsing %s", path)
	}
	metadata, err := page.Metadata()
	if err != nil {
		return errors.Wrapf(err, "reading front matter of %s", path)
	}
	if metadata == nil {
		return nil
	}

	aliases, ok, err := unstructured.NestedStringSlice(metadata, "aliases")
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	err = unstructured.SetNestedStringSlice(metadata, rewriteAliases(aliases, product, branch), "aliases")
	if err != nil {
		return err
	}

	yamlMetadata, err := yaml.Marshal(metadata)
	if err != nil {
		return err
	}
	out := "---\n" + string(yamlMetadata) + "---\n" + string(page.Content())
	return ioutil.WriteFile(path, []byte(out), 0644)
}

func rewriteAliases(aliases []string, product, branch string) []string {
	prefix := "/" + product + "/" + branch
	out := make([]string, len(aliases))
	for i, a := range aliases {
		if strings.HasPrefix(a, "/") && a != prefix && !strings.HasPrefix(a, prefix+"/") {
			a = prefix + a
		}
		out[i] = a
	}
	return out
}

// productVersions lists the versions shown in the dropdown, labelled by branch
// and linking to the branch directory.
func productVersions(p Product) dropdown.VersionMap {
	m := dropdown.VersionMap{}
	for _, v := range p.Versions {
		if v.VDropdown {
			m.Set(v.Branch, v.Branch+"/")
		}
	}
	return m
}

func writeVersions(path string, m dropdown.VersionMap) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding versions")
	}
	return ioutil.WriteFile(path, append(data, '\n'), 0644)
}
