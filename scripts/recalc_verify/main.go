// Command recalc_verify recomputes a course's attainment twice against a
// running API instance and fails when the two result trees differ. Derived
// rows are recomputable at any time, so two back-to-back runs over
// unchanged marks must be identical.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"reflect"
	"strings"
	"time"
)

func main() {
	var (
		base    string
		courses string
		timeout time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080/api/v1", "API base URL")
	flag.StringVar(&courses, "courses", "", "Comma-separated course ids to verify")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "HTTP client timeout")
	flag.Parse()

	if courses == "" {
		log.Fatal("at least one course id is required (-courses)")
	}

	client := &http.Client{Timeout: timeout}
	drift := 0
	for _, courseID := range strings.Split(courses, ",") {
		courseID = strings.TrimSpace(courseID)
		if courseID == "" {
			continue
		}
		equal, err := verifyCourse(client, base, courseID)
		switch {
		case err != nil:
			fmt.Printf("ERROR  %s: %v\n", courseID, err)
			drift++
		case !equal:
			fmt.Printf("DRIFT  %s: consecutive recomputations differ\n", courseID)
			drift++
		default:
			fmt.Printf("OK     %s\n", courseID)
		}
	}

	if drift > 0 {
		os.Exit(1)
	}
}

func verifyCourse(client *http.Client, base, courseID string) (bool, error) {
	first, err := fetchAttainment(client, base, courseID)
	if err != nil {
		return false, err
	}
	second, err := fetchAttainment(client, base, courseID)
	if err != nil {
		return false, err
	}
	return reflect.DeepEqual(first, second), nil
}

func fetchAttainment(client *http.Client, base, courseID string) (interface{}, error) {
	url := fmt.Sprintf("%s/courses/%s/attainment", base, courseID)
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Data interface{} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return payload.Data, nil
}
