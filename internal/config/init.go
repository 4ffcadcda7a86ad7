package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const exampleConfig = `# ssite configuration
[source]
content_dir = "content/"
dist_dir = "_site"

# External build tools. args run on 'ssite build', watch_args run for the
# lifetime of 'ssite dev'. run_on defaults to Build (plus Dev with watch_args).
#
# [runner.pcss]
# cmd = "npx"
# args = ["postcss", "src/main.pcss", "-o", "content/css/main.css"]
# watch_args = ["postcss", "src/main.pcss", "-o", "content/css/main.css", "-w"]
`

const exampleFrame = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>ssite</title>
</head>
<body>
{{content}}
</body>
</html>
`

const exampleReadme = `# Welcome

This page is rendered from content/README.md into _site/index.html and wrapped by
content/_frame.html.
`

// Init writes an example configuration and content tree into rootDir. Existing files
// are only replaced when force is set.
func Init(rootDir string, force bool) error {
	cfgPath := filepath.Join(rootDir, TOMLFileName)
	if _, err := os.Stat(cfgPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", cfgPath)
	}

	files := []struct {
		path    string
		content string
	}{
		{cfgPath, exampleConfig},
		{filepath.Join(rootDir, "content", "_frame.html"), exampleFrame},
		{filepath.Join(rootDir, "content", "README.md"), exampleReadme},
	}
	for _, f := range files {
		if _, err := os.Stat(f.path); err == nil && !force && f.path != cfgPath {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", f.path, err)
		}
		if err := os.WriteFile(f.path, []byte(f.content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.path, err)
		}
	}
	return nil
}
