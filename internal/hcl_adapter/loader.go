package hcl_adapter

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/cyclegrid/internal/config"
	"github.com/specialistvlad/cyclegrid/internal/ctxlog"
	"github.com/specialistvlad/cyclegrid/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under paths and merges them into one model.
// At most one file may carry the scheduling block.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(hclFiles) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	model := config.NewModel()
	parser := hclparse.NewParser()
	var schedulingFile string

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if root.Scheduling != nil {
			if schedulingFile != "" {
				return nil, fmt.Errorf("duplicate scheduling block in %s (already defined in %s)", file, schedulingFile)
			}
			schedulingFile = file
			model.Scheduling = l.translateScheduling(root.Scheduling)
		}
		for _, p := range root.Parameters {
			param, err := l.translateParameter(ctx, p)
			if err != nil {
				return nil, fmt.Errorf("in %s: %w", file, err)
			}
			model.Parameters = append(model.Parameters, param)
		}
		templates, err := l.translateTemplates(ctx, root.ParameterTemplates)
		if err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
		for name, tmpl := range templates {
			model.ParameterTemplates[name] = tmpl
		}
		for _, f := range root.Families {
			model.Families = append(model.Families, &config.Family{Name: f.Name, Inherit: f.Inherit})
		}
		for _, t := range root.Tasks {
			task, err := l.translateTask(ctx, t)
			if err != nil {
				return nil, fmt.Errorf("in %s: %w", file, err)
			}
			model.Tasks = append(model.Tasks, task)
		}
	}

	if schedulingFile == "" {
		return nil, fmt.Errorf("no scheduling block found in %v", paths)
	}
	logger.Debug("HCL loading complete.",
		"graph_sections", len(model.Scheduling.Graphs),
		"parameters", len(model.Parameters),
		"families", len(model.Families),
		"tasks", len(model.Tasks),
	)
	return model, nil
}

// findAllHCLFiles walks all given paths and returns a sorted list of the
// .hcl files found, without duplicates.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	for _, path := range paths {
		files, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if _, wasSeen := seen[f]; !wasSeen {
				allFiles = append(allFiles, f)
				seen[f] = struct{}{}
			}
		}
	}
	sort.Strings(allFiles)
	return allFiles, nil
}
