package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Entry is one reported expression.
type Entry struct {
	Postfix        string    `json:"postfix"`
	Infix          string    `json:"infix"`
	LaTeX          string    `json:"latex"`
	Value          string    `json:"value"`
	Distance       float64   `json:"distance"`
	Digits         float64   `json:"digits"`
	Complexity     float64   `json:"complexity"`
	Nodes          int       `json:"nodes"`
	Depth          int       `json:"depth"`
	Candidate      int64     `json:"candidate"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	Timestamp      time.Time `json:"timestamp"`
}

// FinalReport summarizes the entire run.
type FinalReport struct {
	RunID  string `json:"run_id"`
	Config Config `json:"config"`
	// Target is the constant name or the literal searched for, TargetLaTeX
	// its symbol and TargetValue its display form in the working domain.
	Target         string  `json:"target"`
	TargetLaTeX    string  `json:"target_latex"`
	TargetValue    string  `json:"target_value"`
	Tokens         string  `json:"tokens"`
	Best           Entry   `json:"best"`
	Accepted       bool    `json:"accepted"`
	Candidates     int64   `json:"candidates"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	// HallOfFame lists every improvement in stream mode, or the single
	// result otherwise.
	HallOfFame []Entry `json:"hall_of_fame,omitempty"`
}

// sortByDistance returns a copy of entries sorted by distance ascending. Ties
// go to the lower weighted complexity, then the fewer nodes, then the
// shallower tree.
func sortByDistance(entries []Entry) []Entry {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		switch {
		case a.Distance != b.Distance:
			return a.Distance < b.Distance
		case a.Complexity != b.Complexity:
			return a.Complexity < b.Complexity
		case a.Nodes != b.Nodes:
			return a.Nodes < b.Nodes
		}
		return a.Depth < b.Depth
	})
	return sorted
}

// WriteHallOfFame writes the entries closest first.
func WriteHallOfFame(w io.Writer, entries []Entry) {
	fmt.Fprintln(w, "\n--- Hall of Fame ---")
	for i, e := range sortByDistance(entries) {
		fmt.Fprintf(w, "  #%d: [candidate %d, %.2fs] %5.1f digits | %s = %s\n",
			i+1, e.Candidate, e.ElapsedSeconds, e.Digits, e.Infix, e.Value)
	}
}

// WriteTextFinal writes the final report in human-readable format.
func WriteTextFinal(w io.Writer, r FinalReport) {
	if len(r.HallOfFame) > 1 {
		WriteHallOfFame(w, r.HallOfFame)
	}
	fmt.Fprintln(w, "\n========== FINAL RESULT ==========")
	fmt.Fprintf(w, "Run:        %s\n", r.RunID)
	fmt.Fprintf(w, "Target:     %s = %s\n", r.Target, r.TargetValue)
	fmt.Fprintf(w, "Domain:     %s\n", r.Config.Domain)
	fmt.Fprintf(w, "Mode:       %s\n", r.Config.Mode)
	fmt.Fprintf(w, "Tokens:     %s\n", r.Tokens)
	fmt.Fprintf(w, "Best:       %s\n", r.Best.Infix)
	fmt.Fprintf(w, "Postfix:    %s\n", r.Best.Postfix)
	fmt.Fprintf(w, "LaTeX:      %s\n", r.Best.LaTeX)
	fmt.Fprintf(w, "Value:      %s\n", r.Best.Value)
	fmt.Fprintf(w, "Distance:   %.6e\n", r.Best.Distance)
	fmt.Fprintf(w, "Digits:     %.1f\n", r.Best.Digits)
	fmt.Fprintf(w, "Size:       %d nodes, depth %d\n", r.Best.Nodes, r.Best.Depth)
	fmt.Fprintf(w, "Accepted:   %t (threshold %g)\n", r.Accepted, r.Config.Threshold)
	fmt.Fprintf(w, "Candidates: %d in %.2fs\n", r.Candidates, r.ElapsedSeconds)
	fmt.Fprintln(w, "==================================")
}

// WriteJSONFinal writes the final report as JSON.
func WriteJSONFinal(w io.Writer, r FinalReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// latexEscape escapes underscores for LaTeX text mode.
func latexEscape(s string) string {
	return strings.ReplaceAll(s, "_", `\_`)
}

// targetSymbol is the target in math mode, falling back to its name.
func targetSymbol(r FinalReport) string {
	if r.TargetLaTeX == "" {
		return `\texttt{` + latexEscape(r.Target) + `}`
	}
	return "$" + r.TargetLaTeX + "$"
}

// WriteHallOfFameLatex writes a compilable LaTeX document of the hall of fame.
func WriteHallOfFameLatex(w io.Writer, r FinalReport) {
	cfg := r.Config

	fmt.Fprintln(w, `\documentclass{article}`)
	fmt.Fprintln(w, `\usepackage{amsmath}`)
	fmt.Fprintln(w, `\usepackage{geometry}`)
	fmt.Fprintln(w, `\geometry{margin=1in}`)
	fmt.Fprintf(w, "\\title{Hall of Fame --- Target: %s}\n", targetSymbol(r))
	fmt.Fprintln(w, `\date{\today}`)
	fmt.Fprintln(w, `\begin{document}`)
	fmt.Fprintln(w, `\maketitle`)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "\\noindent Target: %s (\\texttt{%s}), Domain: \\texttt{%s}, Mode: \\texttt{%s}\\\\\n",
		targetSymbol(r), latexEscape(r.Target), cfg.Domain, cfg.Mode)
	fmt.Fprintf(w, "Tokens: \\verb|%s|\\\\\n", r.Tokens)
	fmt.Fprintf(w, "Threshold: %g, Workers: %d, Seed: %d, Candidates: %d\\\\\n",
		cfg.Threshold, cfg.Workers, cfg.Seed, r.Candidates)
	fmt.Fprintf(w, "Target value: \\verb|%s|\n\n", r.TargetValue)

	for i, e := range sortByDistance(r.HallOfFame) {
		fmt.Fprintf(w, "\\subsection*{\\#%d --- %.1f digits (candidate %d, %s)}\n",
			i+1, e.Digits, e.Candidate, e.Timestamp.Format("2006-01-02 15:04:05 UTC"))
		fmt.Fprintln(w, `\[`)
		fmt.Fprintf(w, "  %s\n", e.LaTeX)
		fmt.Fprintln(w, `\]`)
		fmt.Fprintf(w, "\\noindent Value: \\verb|%s|\\\\\n", e.Value)
		fmt.Fprintf(w, "Error: \\verb|%.10e|\\\\\n", e.Distance)
		fmt.Fprintf(w, "Size: %d nodes, depth %d\\\\\n", e.Nodes, e.Depth)
		fmt.Fprintf(w, "Postfix: \\verb|%s|\n\n", e.Postfix)
	}

	fmt.Fprintln(w, `\end{document}`)
}

// WriteOutputs writes the LaTeX hall of fame into outDir and, if pdflatex is
// on the PATH, a compiled PDF next to it.
func WriteOutputs(outDir string, r FinalReport, logger *slog.Logger) error {
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(absOut, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	base := fmt.Sprintf("%s_%s_%s", r.Target, r.Config.Domain, r.Config.Mode)
	tmpDir, err := os.MkdirTemp("", "eureka-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	tmpTex := filepath.Join(tmpDir, base+".tex")
	f, err := os.Create(tmpTex)
	if err != nil {
		return err
	}
	WriteHallOfFameLatex(f, r)
	if err := f.Close(); err != nil {
		return err
	}

	if pdflatex, err := exec.LookPath("pdflatex"); err == nil {
		cmd := exec.Command(pdflatex, "-interaction=nonstopmode", base+".tex")
		cmd.Dir = tmpDir
		if out, err := cmd.CombinedOutput(); err != nil {
			logger.Warn("pdflatex failed", slog.Any("error", err), slog.String("output", string(out)))
		}
	}

	for _, ext := range []string{".tex", ".pdf"} {
		src := filepath.Join(tmpDir, base+ext)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		dst := filepath.Join(absOut, base+ext)
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("write %s: %w", dst, err)
		}
		logger.Info("wrote output", slog.String("path", dst))
	}
	return nil
}

// copyFile copies src to dst, creating or overwriting dst.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
