package v1

// StratboardConfig is the YAML configuration file format.
type StratboardConfig struct {
	Company CompanyConfig `yaml:"company"`
}

// CompanyConfig identifies the organization the dashboard belongs to; both
// names appear in the assistant's system prompt.
type CompanyConfig struct {
	Name          string `yaml:"name"`
	AssistantName string `yaml:"assistantName"`
}
