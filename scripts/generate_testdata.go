//go:build ignore

// generate_testdata.go writes sample graph payloads for demos and manual
// testing. Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	testdata/payloads/small.json   (3 communities of 4)
//	testdata/payloads/medium.json  (8 communities of 8, churn and risk)
//	testdata/payloads/large.json   (20 communities of 12, churn and risk)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/relmap/pkg/testutil"
)

type datasetSpec struct {
	name string
	cfg  testutil.GeneratorConfig
}

var datasets = []datasetSpec{
	{"small", testutil.GeneratorConfig{
		Seed: 1, Communities: 3, PeoplePer: 4, Classified: true,
	}},
	{"medium", testutil.GeneratorConfig{
		Seed: 2, Communities: 8, PeoplePer: 8, ExternalPeople: 6,
		MovedFraction: 0.05, RiskFraction: 0.1, Classified: true,
	}},
	{"large", testutil.GeneratorConfig{
		Seed: 3, Communities: 20, PeoplePer: 12, ExternalPeople: 25,
		MovedFraction: 0.05, RiskFraction: 0.08, Classified: true,
	}},
}

func main() {
	dir := filepath.Join("testdata", "payloads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "creating %s: %v\n", dir, err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		payload := testutil.NewGenerator(ds.cfg).Payload()
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshaling %s: %v\n", ds.name, err)
			os.Exit(1)
		}
		path := filepath.Join(dir, ds.name+".json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "writing %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s (%d nodes, %d edges)\n", path, len(payload.Nodes), len(payload.Edges))
	}
}
