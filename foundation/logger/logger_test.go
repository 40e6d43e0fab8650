package logger_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ardanlabs/powledger/foundation/logger"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Rotating(t *testing.T) {
	t.Log("Given the need to write structured logs to a file.")
	{
		path := filepath.Join(t.TempDir(), "logs", "ledger.log")

		log, closer, err := logger.NewRotating("TEST", path, 1024, 3, false)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the logger: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to construct the logger.", success)

		log.Infow("append", "index", 1)
		log.Sync()

		if err := closer.Close(); err != nil {
			t.Fatalf("\t%s\tShould be able to close the log file: %v", failed, err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to read the log file: %v", failed, err)
		}

		line := strings.TrimSpace(string(data))

		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("\t%s\tShould get a JSON entry, got %q: %v", failed, line, err)
		}
		t.Logf("\t%s\tShould get a JSON entry.", success)

		if entry["service"] != "TEST" || entry["msg"] != "append" {
			t.Fatalf("\t%s\tShould get the service and message, got %v.", failed, entry)
		}
		t.Logf("\t%s\tShould get the service and message.", success)
	}
}

func Test_RotatingConcurrent(t *testing.T) {
	t.Log("Given the need to log from many goroutines while the file rolls.")
	{
		dir := t.TempDir()
		path := filepath.Join(dir, "ledger.log")

		log, closer, err := logger.NewRotating("TEST", path, 1, 2, false)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the logger: %v", failed, err)
		}

		const goroutines = 8
		const entries = 200

		var wg sync.WaitGroup
		wg.Add(goroutines)
		for g := 0; g < goroutines; g++ {
			g := g
			go func() {
				defer wg.Done()
				for i := 0; i < entries; i++ {
					log.Infow("append", "goroutine", g, "index", i)
				}
			}()
		}
		wg.Wait()
		log.Sync()

		if err := closer.Close(); err != nil {
			t.Fatalf("\t%s\tShould be able to close the log file: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to log concurrently.", success)

		files, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to read the log directory: %v", failed, err)
		}

		if len(files) < 2 {
			t.Fatalf("\t%s\tShould roll the log file, got %d files.", failed, len(files))
		}
		t.Logf("\t%s\tShould roll the log file.", success)

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to read the log file: %v", failed, err)
		}

		for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
			if line == "" {
				continue
			}
			var entry map[string]any
			if err := json.Unmarshal([]byte(line), &entry); err != nil {
				t.Fatalf("\t%s\tShould only get whole JSON entries, got %q: %v", failed, line, err)
			}
		}
		t.Logf("\t%s\tShould only get whole JSON entries.", success)
	}
}
