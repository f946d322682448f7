package cli

import (
	"context"
	"fmt"
	"strings"
)

// resolveInitiativeID matches user input against the collection: exact ID
// first, then unique ID prefix.
func resolveInitiativeID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("initiative ID is required")
	}

	items, err := app.Initiatives.List(ctx, true)
	if err != nil {
		return "", err
	}

	for _, in := range items {
		if in.ID == input {
			return in.ID, nil
		}
	}

	var matches []string
	for _, in := range items {
		if strings.HasPrefix(in.ID, input) {
			matches = append(matches, in.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("initiative not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("initiative ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}
