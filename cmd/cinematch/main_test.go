// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/auth"
	"github.com/tomtom215/cinematch/internal/config"
)

const (
	testSecret = "0123456789abcdef0123456789abcdef"

	testMovies = "movieId,title,genres\n" +
		"1,Thor (2011),Action|Adventure|Fantasy\n" +
		"2,Thor: Ragnarok (2017),Action|Adventure|Sci-Fi\n" +
		"3,The Notebook (2004),Drama|Romance\n"
	testRatings = "userId,movieId,rating,timestamp\n" +
		"1,1,5.0,964982703\n1,2,4.0,964982703\n2,1,4.0,964982703\n2,3,3.0,964982703\n"
)

type cliTestEnv struct {
	dataDir    string
	configPath string
}

// setupCLITestEnv writes a snapshot and a config file into a temp dir and
// pins every config source the CLI reads to it.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatalf("mkdir data: %v", err)
	}
	writeFile(t, filepath.Join(dataDir, "movies.csv"), testMovies)
	writeFile(t, filepath.Join(dataDir, "ratings.csv"), testRatings)

	configPath := filepath.Join(dir, "config.yaml")
	writeFile(t, configPath, "logging:\n  level: error\n")

	t.Setenv(config.DotEnvPathEnvVar, filepath.Join(dir, "missing.env"))
	t.Setenv(config.ConfigPathEnvVar, "")
	t.Setenv("MOVIES_PATH", filepath.Join(dataDir, "movies.csv"))
	t.Setenv("RATINGS_PATH", filepath.Join(dataDir, "ratings.csv"))
	t.Setenv("DATA_DIR", dataDir)
	t.Setenv("CATALOG_DRIVER", "csv")
	t.Setenv("ADMIN_JWT_SECRET", testSecret)

	return &cliTestEnv{dataDir: dataDir, configPath: configPath}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestRecommendCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"recommend", "Thor", "(2011)"}, env.configPath)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	requireContains(t, out, "Recommendations for Thor (2011)")
	requireContains(t, out, "Movie ID")
	requireContains(t, out, "Thor: Ragnarok (2017)")
}

func TestRecommendCommand_JSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"recommend", "--json", "--limit", "1", "Thor (2011)"}, env.configPath)
	if err != nil {
		t.Fatalf("recommend --json: %v", err)
	}
	var rows []recommendationRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Title == "Thor (2011)" {
		t.Error("query item must not be recommended")
	}
}

func TestRecommendCommand_NoResult(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"recommend", "Zzzqqq"}, env.configPath)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	requireContains(t, out, "No recommendations found for 'Zzzqqq'. Try checking the spelling.")
}

func TestRecommendCommand_Errors(t *testing.T) {
	env := setupCLITestEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing title", args: []string{"recommend"}, want: "arg"},
		{name: "negative limit", args: []string{"recommend", "--limit", "-1", "Thor"}, want: "--limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args, env.configPath)
			if err == nil {
				t.Fatal("expected error")
			}
			requireContains(t, err.Error(), tt.want)
		})
	}

	t.Run("missing snapshot", func(t *testing.T) {
		t.Setenv("MOVIES_PATH", filepath.Join(env.dataDir, "nope.csv"))
		_, _, err := runCLI(t, []string{"recommend", "Thor"}, env.configPath)
		if err == nil {
			t.Fatal("expected error for missing snapshot")
		}
		requireContains(t, err.Error(), "load snapshot")
	})
}

func TestResolveCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	tests := []struct {
		query    string
		resolved string
		stage    string
	}{
		{query: "Thor (2011)", resolved: "Thor (2011)", stage: "exact"},
		{query: "THE NOTEBOOK (2004)", resolved: "The Notebook (2004)", stage: "case_insensitive"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			out, _, err := runCLI(t, []string{"resolve", tt.query}, env.configPath)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			requireContains(t, out, tt.resolved)
			requireContains(t, out, tt.stage)
		})
	}

	if _, _, err := runCLI(t, []string{"resolve", "Zzzqqq"}, env.configPath); err == nil {
		t.Error("unresolvable query should fail")
	}
}

func TestTokenCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"token", "--subject", "ops", "--ttl", "5m"}, env.configPath)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	mgr, err := auth.NewJWTManager(&config.AdminConfig{JWTSecret: testSecret, TokenTTL: time.Hour, Issuer: "cinematch"})
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	claims, err := mgr.ValidateToken(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("minted token does not validate: %v", err)
	}
	if claims.Subject != "ops" {
		t.Errorf("subject = %q, want ops", claims.Subject)
	}
	if left := time.Until(claims.ExpiresAt.Time); left > 5*time.Minute || left < 4*time.Minute {
		t.Errorf("expires in %v, want about 5m", left)
	}
}

func TestTokenCommand_Role(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"token", "--role", "operator"}, env.configPath)
	if err != nil {
		t.Fatalf("token --role operator: %v", err)
	}
	mgr, err := auth.NewJWTManager(&config.AdminConfig{JWTSecret: testSecret, TokenTTL: time.Hour, Issuer: "cinematch"})
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	claims, err := mgr.ValidateToken(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("minted token does not validate: %v", err)
	}
	if claims.Role != auth.RoleOperator {
		t.Errorf("role = %q, want operator", claims.Role)
	}

	if _, _, err := runCLI(t, []string{"token", "--role", "root"}, env.configPath); err == nil {
		t.Error("unknown role should fail")
	}
}

func TestTokenCommand_AdminDisabled(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("ADMIN_JWT_SECRET", "")

	_, _, err := runCLI(t, []string{"token"}, env.configPath)
	if err == nil {
		t.Fatal("token without a secret should fail")
	}
	requireContains(t, err.Error(), "ADMIN_JWT_SECRET")
}

func TestFetchCommand_AlreadyPresent(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"fetch"}, env.configPath)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	requireContains(t, out, "Dataset already present in "+env.dataDir)
}

func TestRootCommand_BadConfig(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"resolve", "Thor"}, filepath.Join(filepath.Dir(env.configPath), "absent.yaml"))
	if err == nil {
		t.Fatal("missing --config file should fail")
	}
}
