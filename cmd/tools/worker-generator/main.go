// cmd/tools/worker-generator/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"assessment-workers/pkg/registry"
)

// WorkerData holds data for templates
type WorkerData struct {
	*registry.Activity
	PackageName string
	TimeoutExpr string
}

var templates = []struct {
	file string
	body string
}{
	{"config.go", configTemplate},
	{"models.go", modelsTemplate},
	{"handler.go", handlerTemplate},
	{"handler_test.go", testTemplate},
}

func main() {
	activity := flag.String("activity", "", "Activity ID or task type from the registry (e.g., index-assessment)")
	outputDir := flag.String("output", "./internal/workers/assessment/", "Directory that holds worker packages")
	registryPath := flag.String("registry", "configs/activity-registry.json", "Path to the activity registry JSON file")
	flag.Parse()

	if *activity == "" {
		fmt.Println("Usage: worker-generator -activity <id> [-output <dir>] [-registry <path>]")
		fmt.Println("\nExample:")
		fmt.Println("  go run ./cmd/tools/worker-generator -activity archive-assessment")
		os.Exit(1)
	}

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		fmt.Printf("Error loading registry from %s: %v\n", *registryPath, err)
		os.Exit(1)
	}

	found := findActivity(reg, *activity)
	if found == nil {
		fmt.Printf("Activity '%s' not found in registry %s\n", *activity, *registryPath)
		os.Exit(1)
	}

	workerDir, err := generate(found, *outputDir)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nWorker scaffold generated at: %s\n", workerDir)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  1. Implement execute in handler.go\n")
	fmt.Printf("  2. Extend the tests in handler_test.go\n")
	fmt.Printf("  3. Start the worker in cmd/worker-manager/main.go\n")
	fmt.Printf("  4. Add a workers.%s section to configs/config.yaml\n", found.TaskType)
}

func findActivity(reg *registry.ActivityRegistry, key string) *registry.Activity {
	for i := range reg.Activities {
		if reg.Activities[i].ID == key {
			return &reg.Activities[i]
		}
	}
	if a, ok := reg.Find(key); ok {
		return a
	}
	return nil
}

// generate renders the scaffold into outputDir/<activity id>. An existing
// directory is left untouched.
func generate(activity *registry.Activity, outputDir string) (string, error) {
	workerDir := filepath.Join(outputDir, activity.ID)
	if _, err := os.Stat(workerDir); err == nil {
		return "", fmt.Errorf("worker directory %s already exists", workerDir)
	}
	if err := os.MkdirAll(workerDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	data := WorkerData{
		Activity:    activity,
		PackageName: packageName(activity.ID),
		TimeoutExpr: timeoutExpr(activity.TimeoutDuration()),
	}
	funcMap := template.FuncMap{
		"parseSchema":          parseSchema,
		"generateStructFields": generateStructFields,
		"join":                 strings.Join,
	}

	for _, t := range templates {
		tmpl, err := template.New(t.file).Funcs(funcMap).Parse(t.body)
		if err != nil {
			return "", fmt.Errorf("failed to parse template %s: %w", t.file, err)
		}

		path := filepath.Join(workerDir, t.file)
		file, err := os.Create(path)
		if err != nil {
			return "", fmt.Errorf("failed to create %s: %w", path, err)
		}
		err = tmpl.Execute(file, data)
		file.Close()
		if err != nil {
			return "", fmt.Errorf("failed to render %s: %w", path, err)
		}
		fmt.Printf("Generated %s\n", path)
	}
	return workerDir, nil
}

// timeoutExpr renders a timeout as a Go duration expression.
func timeoutExpr(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("%d * time.Second", d/time.Second)
	}
	return fmt.Sprintf("%d * time.Millisecond", d/time.Millisecond)
}
