// Command console is an interactive terminal front end for a running
// LearnForge backend. It drives the typed API client through the view
// controller, so every command goes through the same state machine a
// graphical client would use.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/learnforge/learnforge-backend/internal/client"
	"github.com/learnforge/learnforge-backend/internal/view"
)

const defaultBaseURL = "http://localhost:8080/api/v1"

func main() {
	baseURL := os.Getenv("LEARNFORGE_API_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	api := client.New(baseURL)
	controller := view.NewController(api)
	defer controller.Close()

	ctx := context.Background()

	fmt.Printf("LearnForge console (%s)\n", baseURL)
	fmt.Println("Commands: languages, lang <key>, curriculum <topic>, lesson <concept>, feedback, run, quit")

	// Prime the language catalog so `run` has a real selection.
	controller.FetchLanguages(ctx)
	printLanguages(controller)

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Printf("[%s]> ", controller.SelectedLanguage())
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return
		}
		cmd, arg := splitCommand(line)

		switch cmd {
		case "":
			continue
		case "quit", "exit":
			return
		case "languages":
			controller.FetchLanguages(ctx)
			printLanguages(controller)
		case "lang":
			controller.SelectLanguage(arg)
			fmt.Printf("selected: %s\n", controller.SelectedLanguage())
		case "curriculum":
			controller.GenerateCurriculum(ctx, arg)
			printCurriculum(controller)
		case "lesson":
			controller.GenerateLesson(ctx, arg)
			printLesson(controller)
		case "feedback":
			code, ok := readBlock(reader, "Paste code, end with a single '.' line:")
			if !ok {
				continue
			}
			controller.GetFeedback(ctx, code)
			printFeedback(controller)
		case "run":
			code, ok := readBlock(reader, "Paste code, end with a single '.' line:")
			if !ok {
				continue
			}
			fmt.Print("stdin (single line, empty for none): ")
			stdin, _ := reader.ReadString('\n')
			runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			controller.RunCode(runCtx, code, strings.TrimRight(stdin, "\n"))
			cancel()
			printRun(controller)
		default:
			fmt.Printf("unknown command: %s\n", cmd)
		}
	}
}

func splitCommand(line string) (cmd, arg string) {
	line = strings.TrimSpace(line)
	parts := strings.SplitN(line, " ", 2)
	cmd = strings.ToLower(parts[0])
	if len(parts) == 2 {
		arg = strings.TrimSpace(parts[1])
	}
	return cmd, arg
}

// readBlock collects lines until a lone "." terminator.
func readBlock(reader *bufio.Reader, prompt string) (string, bool) {
	fmt.Println(prompt)
	var b strings.Builder
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", false
		}
		if strings.TrimSpace(line) == "." {
			break
		}
		b.WriteString(line)
	}
	return b.String(), true
}

// ─── Rendering ───────────────────────────────────────────────────────

func printLanguages(c *view.Controller) {
	state := c.Languages()
	if msg, failed := state.FailureMessage(); failed {
		fmt.Printf("error: %s\n", msg)
		return
	}
	langs, ok := state.Value()
	if !ok {
		return
	}
	for _, l := range langs {
		marker := " "
		if l.Key == c.SelectedLanguage() {
			marker = "*"
		}
		fmt.Printf(" %s %-12s %s\n", marker, l.Key, l.Name)
	}
}

func printCurriculum(c *view.Controller) {
	state := c.Curriculum()
	if msg, failed := state.FailureMessage(); failed {
		fmt.Printf("error: %s\n", msg)
		return
	}
	cur, ok := state.Value()
	if !ok || cur == nil {
		return
	}
	if len(cur.Levels) == 0 {
		fmt.Println(cur.Raw)
		return
	}
	for _, level := range cur.Levels {
		fmt.Printf("%s\n", level.Level)
		for _, lesson := range level.Lessons {
			fmt.Printf("  - %s: %s\n", lesson.Title, lesson.Summary)
		}
	}
}

func printLesson(c *view.Controller) {
	state := c.Lesson()
	if msg, failed := state.FailureMessage(); failed {
		fmt.Printf("error: %s\n", msg)
		return
	}
	lesson, ok := state.Value()
	if !ok || lesson == nil {
		return
	}
	if lesson.Title == "" && lesson.Explanation == "" {
		fmt.Println(lesson.Raw)
		return
	}
	fmt.Printf("# %s\n\n%s\n", lesson.Title, lesson.Explanation)
	if lesson.Exercise != "" {
		fmt.Printf("\nExercise: %s\n", lesson.Exercise)
	}
}

func printFeedback(c *view.Controller) {
	state := c.Feedback()
	if msg, failed := state.FailureMessage(); failed {
		fmt.Printf("error: %s\n", msg)
		return
	}
	fb, ok := state.Value()
	if !ok || fb == nil {
		return
	}
	fmt.Println(fb.Feedback)
}

func printRun(c *view.Controller) {
	state := c.Run()
	if msg, failed := state.FailureMessage(); failed {
		fmt.Printf("error: %s\n", msg)
		return
	}
	outcome, ok := state.Value()
	if !ok || outcome == nil {
		return
	}
	fmt.Printf("status: %s", outcome.Status.Description)
	if outcome.Time != nil {
		fmt.Printf(" (%.3fs", *outcome.Time)
		if outcome.Memory != nil {
			fmt.Printf(", %.0f KB", *outcome.Memory)
		}
		fmt.Print(")")
	}
	fmt.Println()
	printSection("stdout", outcome.Stdout)
	printSection("stderr", outcome.Stderr)
	printSection("compile output", outcome.CompileOutput)
	printSection("message", outcome.Message)
}

func printSection(label, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	fmt.Printf("--- %s ---\n%s", label, body)
	if !strings.HasSuffix(body, "\n") {
		fmt.Println()
	}
}
