package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpsank/breaker/internal/logging"
)

func buildLogsCommand(e *env) *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the tail of the latest log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if lines < 0 {
				return usageError{errors.New("--lines must be >= 0")}
			}
			logPath := logging.GetLogPath()
			if logPath == "" {
				logPath = findLatestLogFile(e.cfg.Paths.LogsRoot)
			}
			if logPath == "" {
				return fmt.Errorf("no log files in %s", e.cfg.Paths.LogsRoot)
			}
			content, err := os.ReadFile(logPath)
			if err != nil {
				return fmt.Errorf("cannot read log file: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, line := range tailLines(string(content), lines) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines to print")
	return cmd
}

func tailLines(content string, n int) []string {
	if content == "" {
		return nil
	}
	all := strings.Split(strings.TrimRight(content, "\n"), "\n")
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all
}

// findLatestLogFile locates the most recent breaker-*.log in logDir.
func findLatestLogFile(logDir string) string {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return ""
	}
	var logs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		// Match only date-stamped logs: breaker-YYYY-MM-DD.log (len == 22)
		if strings.HasPrefix(name, "breaker-") && strings.HasSuffix(name, ".log") && len(name) == 22 {
			logs = append(logs, name)
		}
	}
	if len(logs) == 0 {
		return ""
	}
	sort.Strings(logs) // date-stamped names sort chronologically
	return filepath.Join(logDir, logs[len(logs)-1])
}
