// Package main runs the bbox editor in a terminal.
package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/frudas24/bboxedit/internal/task"
)

// main is the entrypoint for the terminal editor.
func main() {
	taskPath := flag.String("task", "task.yaml", "Task file (YAML or JSON)")
	outPath := flag.String("out", "annotations.json", "Where committed annotations are written")
	logPath := flag.String("log", "", "Write logs to this file while the editor runs")
	flag.Parse()

	if err := run(*taskPath, *outPath, *logPath); err != nil {
		log.Printf("fatal: %v", err)
		os.Exit(1)
	}
}

// run loads the task and blocks until the user quits.
func run(taskPath, outPath, logPath string) error {
	_, ed, err := task.Open(taskPath, outPath, log.Printf)
	if err != nil {
		return err
	}
	if logPath != "" {
		f, err := tea.LogToFile(logPath, "bboxtui")
		if err != nil {
			return err
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	p := tea.NewProgram(
		newModel(ed, outPath, task.SaveOutput, clipboard.WriteAll),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err = p.Run()
	return err
}
