package metrics

// Report is the final result of one URL's run.
type Report struct {
	URL         string `json:"url" yaml:"url"`
	Concurrency int    `json:"concurrency" yaml:"concurrency"`
	KeepAlive   bool   `json:"keep_alive" yaml:"keep_alive"`
	Stats       `yaml:",inline"`
}
