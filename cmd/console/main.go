// Command console is the interactive single-user todo tool. Tasks live
// in memory only and are lost on exit.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Aliladla/hackathon2phase3/domain"
	"github.com/Aliladla/hackathon2phase3/storage"
)

type console struct {
	store *storage.Memory
	owner uuid.UUID
	in    *bufio.Scanner
}

func main() {
	c := &console{
		store: storage.NewMemory(),
		owner: uuid.New(),
		in:    bufio.NewScanner(os.Stdin),
	}
	c.run()
}

func (c *console) run() {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 40))
	fmt.Println("  Welcome to Todo Console App")
	fmt.Println(strings.Repeat("=", 40))

	for {
		fmt.Println("\n=== Todo App ===")
		fmt.Println("1. View all tasks")
		fmt.Println("2. Add new task")
		fmt.Println("3. Mark task complete/incomplete")
		fmt.Println("4. Update task")
		fmt.Println("5. Delete task")
		fmt.Println("6. Exit")
		fmt.Println()

		switch c.prompt("Enter choice (1-6): ") {
		case "1":
			c.viewTasks()
		case "2":
			c.addTask()
		case "3":
			c.toggleCompletion()
		case "4":
			c.updateTask()
		case "5":
			c.deleteTask()
		case "6":
			fmt.Println("\nGoodbye! All tasks will be lost (in-memory storage).")
			return
		default:
			printError("Invalid choice. Please enter 1-6.")
		}
	}
}

func (c *console) prompt(label string) string {
	fmt.Print(label)
	if !c.in.Scan() {
		// EOF behaves like choosing exit.
		return "6"
	}
	return strings.TrimSpace(c.in.Text())
}

func (c *console) viewTasks() {
	tasks, err := c.store.List(context.Background(), c.owner, storage.TaskFilter{Limit: storage.MaxListLimit})
	if err != nil {
		printError(err.Error())
		return
	}
	if len(tasks) == 0 {
		fmt.Println("\nNo tasks found. Add your first task!")
		return
	}
	fmt.Println("\n=== All Tasks ===")
	completed := 0
	for _, t := range tasks {
		fmt.Println(formatTask(t))
		if t.Completed {
			completed++
		}
	}
	fmt.Printf("\nTotal: %d tasks (%d completed, %d pending)\n", len(tasks), completed, len(tasks)-completed)
}

func (c *console) addTask() {
	fmt.Println("\n--- Add New Task ---")
	title := c.prompt("Enter task title: ")
	description := c.prompt("Enter description (optional, press Enter to skip): ")

	task, err := c.store.Create(context.Background(), c.owner, title, description)
	if err != nil {
		printError(err.Error())
		return
	}
	printSuccess("Task created successfully!")
	printTaskDetails(task)
}

func (c *console) toggleCompletion() {
	fmt.Println("\n--- Mark Task Complete/Incomplete ---")
	id, ok := c.promptTaskID()
	if !ok {
		return
	}
	ctx := context.Background()
	task, err := c.store.Get(ctx, c.owner, id)
	if err != nil {
		printError(err.Error())
		return
	}
	fmt.Printf("\nCurrent status: %s\n", statusLabel(task.Completed))

	var target bool
	switch strings.ToLower(c.prompt("Mark as (c)omplete or (i)ncomplete? ")) {
	case "c":
		target = true
	case "i":
		target = false
	default:
		printError("Invalid choice. Please enter 'c' or 'i'.")
		return
	}
	updated, err := c.store.Update(ctx, c.owner, id, storage.TaskPatch{Completed: &target})
	if err != nil {
		printError(err.Error())
		return
	}
	if target {
		printSuccess("Task marked as complete!")
	} else {
		printSuccess("Task marked as incomplete!")
	}
	printTaskDetails(updated)
}

func (c *console) updateTask() {
	fmt.Println("\n--- Update Task ---")
	id, ok := c.promptTaskID()
	if !ok {
		return
	}
	ctx := context.Background()
	task, err := c.store.Get(ctx, c.owner, id)
	if err != nil {
		printError(err.Error())
		return
	}
	fmt.Printf("\nCurrent title: %s\n", task.Title)
	fmt.Printf("Current description: %s\n", orNone(task.Description))

	patch := storage.TaskPatch{}
	if title := c.prompt("\nNew title (press Enter to keep current): "); title != "" {
		patch.Title = &title
	}
	if description := c.prompt("New description (press Enter to keep current): "); description != "" {
		patch.Description = &description
	}
	if patch.Title == nil && patch.Description == nil {
		printError("No changes made. At least one field must be updated.")
		return
	}
	updated, err := c.store.Update(ctx, c.owner, id, patch)
	if err != nil {
		printError(err.Error())
		return
	}
	printSuccess("Task updated successfully!")
	printTaskDetails(updated)
}

func (c *console) deleteTask() {
	fmt.Println("\n--- Delete Task ---")
	id, ok := c.promptTaskID()
	if !ok {
		return
	}
	ctx := context.Background()
	task, err := c.store.Get(ctx, c.owner, id)
	if err != nil {
		printError(err.Error())
		return
	}
	fmt.Printf("\nTask to delete: [%d] %s\n", task.ID, task.Title)

	if strings.ToLower(c.prompt("Are you sure you want to delete this task? (y/n): ")) != "y" {
		fmt.Println("\nDeletion cancelled.")
		return
	}
	if err := c.store.Delete(ctx, c.owner, id); err != nil {
		printError(err.Error())
		return
	}
	printSuccess(fmt.Sprintf("Task ID %d has been deleted.", id))
}

func (c *console) promptTaskID() (int64, bool) {
	raw := c.prompt("Enter task ID: ")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		printError("Invalid task ID. Please enter a number.")
		return 0, false
	}
	return id, true
}

func formatTask(t domain.Task) string {
	status := "[ ]"
	if t.Completed {
		status = "[✓]"
	}
	return fmt.Sprintf("[%d] %s %s", t.ID, status, t.Title)
}

func printTaskDetails(t domain.Task) {
	fmt.Printf("\n✓ Task ID: %d\n", t.ID)
	fmt.Printf("  Title: %s\n", t.Title)
	fmt.Printf("  Description: %s\n", orNone(t.Description))
	fmt.Printf("  Status: %s\n", statusLabel(t.Completed))
	fmt.Printf("  Created: %s\n", t.CreatedAt.Format("2006-01-02 15:04:05"))
}

func statusLabel(completed bool) string {
	if completed {
		return "Complete"
	}
	return "Incomplete"
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func printError(message string) {
	fmt.Printf("\n✗ Error: %s\n", message)
}

func printSuccess(message string) {
	fmt.Printf("\n✓ %s\n", message)
}
