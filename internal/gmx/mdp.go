package gmx

import (
	"fmt"
	"os"
	"text/template"
)

// RenderMDP renders an .mdp parameter template to outputPath, substituting
// the given parameters (e.g. "nsteps"). Templates use text/template syntax:
// `nsteps = {{.nsteps}}`.
func RenderMDP(templatePath, outputPath string, params map[string]any) error {
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return fmt.Errorf("parse mdp template %s: %w", templatePath, err)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create mdp %s: %w", outputPath, err)
	}
	defer f.Close()
	if err := tmpl.Execute(f, params); err != nil {
		return fmt.Errorf("render mdp %s: %w", outputPath, err)
	}
	return nil
}
