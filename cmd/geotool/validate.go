package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/locality-georef/internal/adapter/gazetteer"
	"github.com/couchcryptid/locality-georef/internal/domain"
	"github.com/couchcryptid/locality-georef/internal/geo"
)

// expectedRequest is one entry of a requests fixture.
type expectedRequest struct {
	ID              string `json:"id"`
	Location        string `json:"location"`
	ExpectedStatus  string `json:"expected_status"`
	ExpectedGeorefs int    `json:"expected_georefs"`
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func runValidate(args []string, stdout io.Writer) error {
	fs := newFlagSet("validate")
	path := fs.String("gazetteer", "", "JSON file of places")
	requestsPath := fs.String("requests", "", "JSON file of requests with expected_status and expected_georefs")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *path == "" || *requestsPath == "" {
		return fmt.Errorf("%w: -gazetteer and -requests required", errUsage)
	}

	places, err := gazetteer.LoadFile(*path)
	if err != nil {
		return err
	}
	reqs, err := loadExpectedRequests(*requestsPath)
	if err != nil {
		return err
	}

	g := domain.NewGeoreferencer(nil, places, domain.DefaultExtentPolicy(), stderrLogger())
	phases := []*phase{
		validateFixtures(reqs, places),
		validateGeoreferences(reqs, g),
	}

	fmt.Fprintf(stdout, "Fixtures: %d places, %d requests\n", places.Len(), len(reqs))
	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(stdout, "  %-24s %s\n", p.name, status)
	}
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(stdout, "\n--- %s ---\n", p.name)
		for _, e := range p.errors {
			fmt.Fprintf(stdout, "  %s\n", e)
		}
	}

	if !allPassed {
		return errors.New("validation failed")
	}
	return nil
}

func loadExpectedRequests(path string) ([]expectedRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read requests: %w", err)
	}
	var reqs []expectedRequest
	if err := json.Unmarshal(data, &reqs); err != nil {
		return nil, fmt.Errorf("decode requests: %w", err)
	}
	return reqs, nil
}

// validateFixtures checks the fixtures themselves: unique ids, known
// statuses and statuses consistent with the expected counts.
func validateFixtures(reqs []expectedRequest, places *gazetteer.Gazetteer) *phase {
	p := &phase{name: "fixture consistency"}
	if places.Len() == 0 {
		p.errorf("gazetteer has no places")
	}
	if len(reqs) == 0 {
		p.errorf("no requests")
	}
	seen := make(map[string]bool, len(reqs))
	for i, r := range reqs {
		if r.ID == "" {
			p.errorf("request %d: missing id", i)
		} else if seen[r.ID] {
			p.errorf("request %d: duplicate id %q", i, r.ID)
		}
		seen[r.ID] = true

		switch r.ExpectedStatus {
		case domain.ResultStatusOK:
			if r.ExpectedGeorefs == 0 {
				p.errorf("%s: status %s with no georeferences", r.ID, r.ExpectedStatus)
			}
		case domain.ResultStatusNoMatch:
			if r.ExpectedGeorefs != 0 {
				p.errorf("%s: status %s with %d georeferences", r.ID, r.ExpectedStatus, r.ExpectedGeorefs)
			}
		default:
			p.errorf("%s: unknown expected status %q", r.ID, r.ExpectedStatus)
		}
	}
	return p
}

// validateGeoreferences georeferences every request and compares the
// outcome with its expectation.
func validateGeoreferences(reqs []expectedRequest, g *domain.Georeferencer) *phase {
	p := &phase{name: "georeferences"}
	for _, r := range reqs {
		result, err := g.Georeference(context.Background(), r.ID, r.Location)
		if err != nil {
			p.errorf("%s: %v", r.ID, err)
			continue
		}
		if result.Status != r.ExpectedStatus {
			p.errorf("%s: status %s, want %s", r.ID, result.Status, r.ExpectedStatus)
		}
		if len(result.Georefs) != r.ExpectedGeorefs {
			p.errorf("%s: %d georeferences, want %d", r.ID, len(result.Georefs), r.ExpectedGeorefs)
		}
		for _, ref := range result.Georefs {
			if !ref.BoundingBox.IsValid() {
				p.errorf("%s: invalid box %s centered at %s,%s", r.ID, ref.BoundingBox,
					geo.FormatDegrees(ref.Lng), geo.FormatDegrees(ref.Lat))
			}
		}
	}
	return p
}
