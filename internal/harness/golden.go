package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// AssertGolden runs a scenario and compares its snapshot against the
// golden file testdata/golden/{scenario.Name}.golden.
//
// Golden files are the source of truth for expected lowering output;
// regenerate them with `go test ./internal/harness -update` after an
// intentional behavior change.
//
// Returns error if the scenario itself fails to lower. Snapshot
// mismatches fail the test via goldie.
func AssertGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	snapshot, err := Run(scenario)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, snapshot)

	return nil
}
