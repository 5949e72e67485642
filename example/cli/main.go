// A terminal demo of the onboarding conversation. Records are appended to a
// local CSV file; "upload" prompts for a CSV path and runs the rule-based
// extractor over its rows.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/hrtools/onboardbot/extract"
	"github.com/hrtools/onboardbot/flow"
	"github.com/hrtools/onboardbot/sink"
	"github.com/hrtools/onboardbot/types"
)

func main() {
	csvPath := flag.String("db", "onboarding_database.csv", "path to the CSV record sink")
	flag.Parse()

	if err := startApp(context.Background(), *csvPath); err != nil {
		log.Fatalf("start app: %v", err)
	}
}

func startApp(ctx context.Context, csvPath string) error {
	slog.SetLogLoggerLevel(slog.LevelWarn)

	f := flow.New(sink.NewCSV(csvPath))
	st, err := f.Begin(ctx)
	if err != nil {
		return err
	}
	printNewMessages(st, 1)

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("You: ")
		input, rErr := reader.ReadString('\n')
		if rErr != nil {
			fmt.Println("Input closed. Exiting.")
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.Contains(strings.ToLower(input), "upload") {
			ingested, ok := ingestFile(ctx, f, st, reader)
			if !ok {
				continue
			}
			st = ingested
		}

		before := len(st.History)
		next, iErr := f.Invoke(ctx, st, input)
		if iErr != nil {
			return iErr
		}
		st = next
		printNewMessages(st, before+1)
	}
}

func ingestFile(ctx context.Context, f *flow.Flow, st flow.State, reader *bufio.Reader) (flow.State, bool) {
	fmt.Print("Path to CSV file: ")
	path, err := reader.ReadString('\n')
	if err != nil {
		return st, false
	}
	file, err := os.Open(strings.TrimSpace(path))
	if err != nil {
		fmt.Printf("Could not open file: %v\n", err)
		return st, false
	}
	defer file.Close()

	rows, err := extract.ReadCSVRows(file)
	if err != nil {
		fmt.Printf("Could not parse file: %v\n", err)
		return st, false
	}
	records := extract.All(ctx, extract.NewRuleBased(), rows)
	return f.IngestRecords(st, records), true
}

func printNewMessages(st flow.State, from int) {
	for _, msg := range st.History[from:] {
		if msg.Role != types.RoleAssistant {
			continue
		}
		if msg.Content != "" {
			fmt.Printf("Assistant: %s\n", msg.Content)
		}
		if len(msg.Options) > 0 {
			fmt.Printf("  Options: %s\n", strings.Join(msg.Options, " | "))
		}
	}
}
