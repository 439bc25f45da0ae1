// Package main provides a generator that extracts CLI, configuration,
// diagnostic code and capability matrix metadata from leaplua source code
// and generates markdown documentation.
//
// Usage:
//
//	go run ./scripts/gendocs -gen=cli -outdir=docs/cli
//	go run ./scripts/gendocs -gen=config -outdir=docs/reference
//	go run ./scripts/gendocs -gen=codes -outdir=docs/diagnostics
//	go run ./scripts/gendocs -gen=matrix -outdir=docs/reference
//	go run ./scripts/gendocs -gen=all
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
)

var (
	genFlag    = flag.String("gen", "all", "what to generate: cli, config, codes, matrix, all")
	outDirFlag = flag.String("outdir", "", "output directory (defaults based on gen type)")
)

// generator produces one documentation section into a directory.
type generator struct {
	defaultDir string
	run        func(outDir string) error
}

var generators = map[string]generator{
	"cli":    {defaultDir: filepath.Join("docs", "cli"), run: generateCLIDocs},
	"config": {defaultDir: filepath.Join("docs", "reference"), run: generateConfigDocs},
	"codes":  {defaultDir: filepath.Join("docs", "diagnostics"), run: generateCodesDocs},
	"matrix": {defaultDir: filepath.Join("docs", "reference"), run: generateMatrixDocs},
}

// generatorOrder fixes the order used by -gen=all.
var generatorOrder = []string{"cli", "config", "codes", "matrix"}

func main() {
	flag.Parse()

	if _, ok := generators[*genFlag]; !ok && *genFlag != "all" {
		log.Fatalf("unknown -gen value: %s (use: cli, config, codes, matrix, all)", *genFlag)
	}

	// Find project root (where go.mod is)
	projectRoot, err := findProjectRoot()
	if err != nil {
		log.Fatalf("failed to find project root: %v", err)
	}

	log.Printf("Project root: %s", projectRoot)

	if *genFlag != "all" {
		g := generators[*genFlag]
		outDir := *outDirFlag
		if outDir == "" {
			outDir = filepath.Join(projectRoot, g.defaultDir)
		}
		if err := g.run(outDir); err != nil {
			log.Fatalf("failed to generate %s docs: %v", *genFlag, err)
		}
		log.Println("Done!")
		return
	}

	for _, name := range generatorOrder {
		g := generators[name]
		if err := g.run(filepath.Join(projectRoot, g.defaultDir)); err != nil {
			log.Fatalf("failed to generate %s docs: %v", name, err)
		}
	}

	log.Println("Done!")
}

// findProjectRoot walks up from current directory to find go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
