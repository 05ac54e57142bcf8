package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadTickers reads the instrument universe from a plain text file:
// one ticker per line, # starts a comment
func LoadTickers(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tickers file: %w", err)
	}
	defer f.Close()

	var tickers []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ticker := strings.ToUpper(line)
		if _, dup := seen[ticker]; dup {
			continue
		}
		seen[ticker] = struct{}{}
		tickers = append(tickers, ticker)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read tickers file: %w", err)
	}

	if len(tickers) == 0 {
		return nil, fmt.Errorf("tickers file %s is empty", path)
	}

	return tickers, nil
}
