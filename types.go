package main

type ProductVersion struct {
	Branch    string `json:"branch" yaml:"branch"`
	HostDocs  bool   `json:"hostDocs" yaml:"hostDocs"`
	DocsDir   string `json:"docsDir,omitempty" yaml:"docsDir,omitempty"`
	VDropdown bool   `json:"v-dropdown,omitempty" yaml:"v-dropdown,omitempty"`
}

type Product struct {
	Name          string           `json:"-" yaml:"-"`
	URL           string           `json:"url" yaml:"url"`
	Versions      []ProductVersion `json:"versions" yaml:"versions"`
	LatestVersion string           `json:"latestVersion" yaml:"latestVersion"`
	GithubURL     string           `json:"githubUrl" yaml:"githubUrl"`
}

type DocAggregator struct {
	Products map[string]Product `json:"products" yaml:"products"`
}
