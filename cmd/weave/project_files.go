package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"weave/internal/driver"
	"weave/internal/project"
)

const noManifestMessage = "no " + project.ManifestName + " found\nplease pass the IDL files explicitly, e.g.:\n  weave gen idl/"

// inputs is what a command works on: the .wv files, the import roots and
// the manifest they belong to, if any.
type inputs struct {
	files    []string
	roots    []string
	baseDir  string
	manifest *project.Manifest
}

// resolveInputs expands args into .wv files. Without args the manifest's
// source dirs are used. Paths are kept relative to the working directory
// so that one file is never loaded under two names.
func resolveInputs(args []string) (*inputs, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	manifest, found, err := project.LoadManifest(wd)
	if err != nil {
		return nil, err
	}
	in := &inputs{baseDir: wd}
	if found {
		in.manifest = manifest
		for _, dir := range manifest.SourceDirs() {
			in.roots = append(in.roots, relToWD(wd, dir))
		}
	}

	targets := args
	if len(targets) == 0 {
		if !found {
			return nil, errors.New(noManifestMessage)
		}
		targets = in.roots
	}
	for _, t := range targets {
		in.files = append(in.files, relToWD(wd, t))
	}
	in.files, err = driver.ListFiles(in.files...)
	if err != nil {
		return nil, err
	}
	if len(in.files) == 0 {
		return nil, fmt.Errorf("no %s files found", project.Ext)
	}
	if !found {
		// без манифеста импорты ищутся рядом с переданными путями
		for _, t := range targets {
			if st, err := os.Stat(t); err == nil && st.IsDir() {
				in.roots = append(in.roots, relToWD(wd, t))
			}
		}
	}
	return in, nil
}

func relToWD(wd, p string) string {
	if !filepath.IsAbs(p) {
		return filepath.ToSlash(filepath.Clean(p))
	}
	if rel, err := filepath.Rel(wd, p); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(p)
}

// jobsFor prefers an explicit --jobs over [build].jobs.
func jobsFor(cmd *cobra.Command, in *inputs) (int, error) {
	jobs, err := cmd.Root().PersistentFlags().GetInt("jobs")
	if err != nil {
		return 0, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if !cmd.Root().PersistentFlags().Changed("jobs") && in.manifest != nil {
		jobs = in.manifest.Config.Build.Jobs
	}
	return jobs, nil
}

// stringOption returns the flag value when set, otherwise fallback.
func stringOption(cmd *cobra.Command, name, fallback string) (string, error) {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	if !cmd.Flags().Changed(name) && fallback != "" {
		return fallback, nil
	}
	return value, nil
}
