package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// target is one request replayed against a running reports API. Keys lists
// fields that must be present in the envelope data object.
type target struct {
	Method   string   `json:"method"`
	Path     string   `json:"path"`
	Status   []int    `json:"status"`
	Keys     []string `json:"keys"`
	Critical bool     `json:"critical"`
}

type config struct {
	Targets []target `json:"targets"`
}

type result struct {
	Target      target
	Status      int
	StatusMatch bool
	MissingKeys []string
	Error       error
	Duration    time.Duration
}

func (r result) ok() bool {
	return r.Error == nil && r.StatusMatch && len(r.MissingKeys) == 0
}

func main() {
	var (
		base        string
		targetsPath string
		token       string
		timeout     time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:5000/api/v1", "Reports API base URL")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "smoke_check", "targets.json"), "Path to JSON targets file")
	flag.StringVar(&token, "token", os.Getenv("REPORTS_API_TOKEN"), "Bearer token for operator routes")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	results := make([]result, 0, len(targets))
	for _, t := range targets {
		results = append(results, checkTarget(client, base, token, t))
	}

	printReport(os.Stdout, results)
	breaking, optional := tally(results)
	fmt.Printf("Breaking failures: %d, Optional failures: %d\n", breaking, optional)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return cfg.Targets, nil
}

func tally(results []result) (breaking, optional int) {
	for _, res := range results {
		if res.ok() {
			continue
		}
		if res.Target.Critical {
			breaking++
		} else {
			optional++
		}
	}
	return breaking, optional
}

func checkTarget(client *http.Client, base, token string, tgt target) result {
	res := result{Target: tgt}
	resp, dur, err := performRequest(client, base, token, tgt)
	res.Duration = dur
	if err != nil {
		res.Error = err
		return res
	}
	defer resp.Body.Close()

	res.Status = resp.StatusCode
	res.StatusMatch = statusAllowed(tgt.Status, resp.StatusCode)
	if len(tgt.Keys) == 0 || resp.StatusCode >= 300 {
		return res
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		res.Error = fmt.Errorf("read body: %w", err)
		return res
	}
	res.MissingKeys, res.Error = missingKeys(body, tgt.Keys)
	return res
}

func statusAllowed(allowed []int, status int) bool {
	if len(allowed) == 0 {
		return status >= 200 && status < 300
	}
	for _, s := range allowed {
		if s == status {
			return true
		}
	}
	return false
}

func missingKeys(body []byte, keys []string) ([]string, error) {
	var envelope struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	var missing []string
	for _, key := range keys {
		if _, ok := envelope.Data[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing, nil
}

func performRequest(client *http.Client, base, token string, tgt target) (*http.Response, time.Duration, error) {
	if client == nil {
		return nil, 0, errors.New("nil client")
	}
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return nil, 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	return resp, time.Since(start), nil
}

func printReport(w io.Writer, results []result) {
	fmt.Fprintln(w, "Smoke Check Report")
	fmt.Fprintln(w, "==================")
	for _, res := range results {
		status := "OK"
		switch {
		case res.Error != nil:
			status = "ERROR"
		case !res.ok():
			status = "FAIL"
		}
		fmt.Fprintf(w, "[%s] %s %s\n", status, res.Target.Method, res.Target.Path)
		if res.Error != nil {
			fmt.Fprintf(w, "  Error: %v\n", res.Error)
			continue
		}
		fmt.Fprintf(w, "  Status: %d (%s) | Critical: %t\n", res.Status, res.Duration, res.Target.Critical)
		if len(res.MissingKeys) > 0 {
			fmt.Fprintf(w, "  Missing keys: %s\n", strings.Join(res.MissingKeys, ", "))
		}
	}
}
