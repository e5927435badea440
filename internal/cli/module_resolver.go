package cli

import (
	"fmt"
	"os"

	"github.com/toyz/facet/internal/utils"
)

// ModuleResolver handles resolving Go module information
type ModuleResolver struct {
	gomod *utils.GoModParser
}

// NewModuleResolver creates a new module resolver
func NewModuleResolver() *ModuleResolver {
	return &ModuleResolver{gomod: utils.NewGoModParser()}
}

// ResolveModuleName resolves the module name reported by the CLI.
// If customModule is provided, it uses that; otherwise reads the go.mod
// enclosing dir (the working directory when dir is empty).
func (r *ModuleResolver) ResolveModuleName(customModule, dir string) (string, error) {
	if customModule != "" {
		return customModule, nil
	}

	info, err := r.resolve(dir)
	if err != nil {
		return "", fmt.Errorf("failed to determine module name: %w (consider using --module flag)", err)
	}
	return info.Path, nil
}

// BuildPackagePath builds the full import path for a package directory
func (r *ModuleResolver) BuildPackagePath(packageDir string) (string, error) {
	info, err := r.resolve(packageDir)
	if err != nil {
		return "", err
	}
	return utils.PackagePath(info.Path, info.Dir, packageDir)
}

func (r *ModuleResolver) resolve(dir string) (*utils.ModuleInfo, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = wd
	}

	goModPath, err := r.gomod.FindGoModFile(dir)
	if err != nil {
		return nil, err
	}
	return r.gomod.Parse(goModPath)
}
