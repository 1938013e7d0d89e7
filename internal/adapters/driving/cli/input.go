package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ppltr/internal/core/domain"
)

// readRequirements returns requirement texts from args, or one per non-blank
// line of path when args are empty. A path of "-" reads stdin.
func readRequirements(cmd *cobra.Command, args []string, path string) ([]string, error) {
	if len(args) > 0 && path != "" {
		return nil, errors.New("give requirements as arguments or with --file, not both")
	}
	if len(args) > 0 {
		return args, nil
	}
	if path == "" {
		return nil, errors.New("no requirements given")
	}

	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening requirements: %w", err)
		}
		defer f.Close()
		r = f
	}

	var texts []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			texts = append(texts, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading requirements: %w", err)
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("no requirements in %s", path)
	}
	return texts, nil
}

func queryKind(group bool) domain.QueryKind {
	if group {
		return domain.QueryKindGroup
	}
	return domain.QueryKindIndividual
}
