package prompts

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates/*.yaml
var templateFS embed.FS

// PromptProvider is implemented by the prompt manager to allow test doubles.
type PromptProvider interface {
	BuildPrompt(mode, difficulty string, data map[string]string) (string, error)
	GetModes() []string
}

// PromptTemplate is one loaded template file.
type PromptTemplate struct {
	BasePrompt       string            `yaml:"base_prompt"`
	DifficultyLevels map[string]string `yaml:"difficulty_levels"`
}

// PromptManager assembles prompts from embedded YAML templates. Templates are
// keyed by mode (file name) and difficulty.
type PromptManager struct {
	prompts map[string]map[string]string // mode -> difficulty -> complete prompt
}

func NewPromptManager() (*PromptManager, error) {
	pm := &PromptManager{prompts: make(map[string]map[string]string)}
	if err := pm.loadPrompts(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}
	return pm, nil
}

// BuildPrompt returns the complete prompt for a mode and difficulty with all
// {{.Key}} placeholders substituted.
func (pm *PromptManager) BuildPrompt(mode, difficulty string, data map[string]string) (string, error) {
	modePrompts, exists := pm.prompts[mode]
	if !exists {
		return "", fmt.Errorf("template not found for mode: %s", mode)
	}
	prompt, exists := modePrompts[difficulty]
	if !exists {
		return "", fmt.Errorf("difficulty '%s' not found for mode '%s'", difficulty, mode)
	}

	for key, value := range data {
		prompt = strings.ReplaceAll(prompt, "{{."+key+"}}", value)
	}
	return prompt, nil
}

// GetModes lists the loaded template modes.
func (pm *PromptManager) GetModes() []string {
	modes := make([]string, 0, len(pm.prompts))
	for mode := range pm.prompts {
		modes = append(modes, mode)
	}
	return modes
}

func (pm *PromptManager) loadPrompts() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
		}

		var tpl PromptTemplate
		if err := yaml.Unmarshal(data, &tpl); err != nil {
			return fmt.Errorf("failed to parse template file %s: %w", entry.Name(), err)
		}

		mode := strings.TrimSuffix(entry.Name(), ".yaml")
		pm.prompts[mode] = make(map[string]string)

		for difficulty, detail := range tpl.DifficultyLevels {
			var full strings.Builder
			if tpl.BasePrompt != "" {
				full.WriteString(tpl.BasePrompt)
				full.WriteString("\n\n")
			}
			full.WriteString(detail)
			pm.prompts[mode][difficulty] = full.String()
		}
	}

	return nil
}
