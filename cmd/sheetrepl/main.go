// Command sheetrepl is a line-oriented terminal front end over a
// gridcalc/workbook.Workbook, grounded on broyeztony-karl/repl's
// Start/readLine shape: raw-mode input when stdin/stdout are a terminal,
// a plain line scanner otherwise.
package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"gridcalc/value"
	"gridcalc/workbook"
)

const prompt = "gridcalc> "

func main() {
	w := workbook.New()
	w.RegisterCallback(func(_ *workbook.Workbook, changed []workbook.ChangedCell) {
		for _, c := range changed {
			log.Printf("recomputed %s!%s", c.Sheet, c.Addr)
		}
	})
	if _, err := w.NewSheet("Sheet1"); err != nil {
		log.Fatalf("initial sheet: %v", err)
	}
	run(w, os.Stdin, os.Stdout)
}

func run(w *workbook.Workbook, in *os.File, out *os.File) {
	var (
		tty    *ttyInput
		scanCh chan string
	)
	if ti, ok := newTTYInput(in, out); ok {
		tty = ti
		defer tty.Close()
	} else {
		scanner := bufio.NewScanner(in)
		scanCh = make(chan string)
		go func() {
			defer close(scanCh)
			for scanner.Scan() {
				scanCh <- scanner.Text()
			}
		}()
	}

	var sessionOut io.Writer = out

	fmt.Fprintln(sessionOut, "gridcalc REPL — :help for commands, :quit to exit")

	for {
		var (
			line string
			ok   bool
		)
		if tty != nil {
			line, ok = tty.readLine(prompt)
		} else {
			fmt.Fprint(sessionOut, prompt)
			line, ok = <-scanCh
		}
		if !ok {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == ":quit" || line == ":q" {
			return
		}
		if line == ":help" {
			printHelp(sessionOut)
			continue
		}
		if err := dispatch(w, sessionOut, line); err != nil {
			fmt.Fprintf(sessionOut, "error: %v\n", err)
		}
	}
}

func printHelp(out io.Writer) {
	fmt.Fprint(out, `commands:
  set <sheet> <addr> <text...>     set a cell's contents
  get <sheet> <addr>               print a cell's value
  sheets                           list sheet names
  extent <sheet>                   print a sheet's (cols, rows) extent
  new_sheet [name]                 create a sheet
  del_sheet <name>                 delete a sheet
  rename_sheet <old> <new>         rename a sheet
  copy_sheet <name>                duplicate a sheet
  move_sheet <name> <index>        reposition a sheet
  move <sheet> <start> <end> <to> [toSheet]   move a rectangle
  copy <sheet> <start> <end> <to> [toSheet]   copy a rectangle
  sort <sheet> <start> <end> <c1,c2,...>      sort rows by signed column offsets
  :help                            this message
  :quit                            exit
`)
}

func dispatch(w *workbook.Workbook, out io.Writer, line string) error {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "set":
		if len(args) < 2 {
			return fmt.Errorf("usage: set <sheet> <addr> <text...>")
		}
		text := strings.Join(args[2:], " ")
		return w.SetCellContents(args[0], args[1], text)

	case "get":
		if len(args) != 2 {
			return fmt.Errorf("usage: get <sheet> <addr>")
		}
		v, err := w.GetCellValue(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, renderValue(v))
		return nil

	case "sheets":
		for _, name := range w.SheetNames() {
			fmt.Fprintln(out, name)
		}
		return nil

	case "extent":
		if len(args) != 1 {
			return fmt.Errorf("usage: extent <sheet>")
		}
		cols, rows, err := w.Extent(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d cols, %d rows\n", cols, rows)
		return nil

	case "new_sheet":
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		created, err := w.NewSheet(name)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, created)
		return nil

	case "del_sheet":
		if len(args) != 1 {
			return fmt.Errorf("usage: del_sheet <name>")
		}
		return w.DelSheet(args[0])

	case "rename_sheet":
		if len(args) != 2 {
			return fmt.Errorf("usage: rename_sheet <old> <new>")
		}
		return w.RenameSheet(args[0], args[1])

	case "copy_sheet":
		if len(args) != 1 {
			return fmt.Errorf("usage: copy_sheet <name>")
		}
		created, err := w.CopySheet(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, created)
		return nil

	case "move_sheet":
		if len(args) != 2 {
			return fmt.Errorf("usage: move_sheet <name> <index>")
		}
		idx, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid index %q", args[1])
		}
		return w.MoveSheet(args[0], idx)

	case "move", "copy":
		if len(args) < 4 {
			return fmt.Errorf("usage: %s <sheet> <start> <end> <to> [toSheet]", cmd)
		}
		toSheet := ""
		if len(args) > 4 {
			toSheet = args[4]
		}
		if cmd == "move" {
			return w.MoveCells(args[0], args[1], args[2], args[3], toSheet)
		}
		return w.CopyCells(args[0], args[1], args[2], args[3], toSheet)

	case "sort":
		if len(args) != 4 {
			return fmt.Errorf("usage: sort <sheet> <start> <end> <c1,c2,...>")
		}
		cols, err := parseSortCols(args[3])
		if err != nil {
			return err
		}
		return w.SortRegion(args[0], args[1], args[2], cols)

	default:
		return fmt.Errorf("unknown command %q (try :help)", cmd)
	}
}

func parseSortCols(spec string) ([]int, error) {
	parts := strings.Split(spec, ",")
	cols := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid sort column %q", p)
		}
		cols = append(cols, n)
	}
	return cols, nil
}

// renderValue prints a cell value the way a terminal front end should: the
// canonical decimal form for numbers, the bare text for strings, TRUE/FALSE
// for bools, the canonical spelling for errors, and nothing for Empty.
func renderValue(v value.Value) string {
	switch tv := v.(type) {
	case value.EmptyValue:
		return ""
	case value.NumberValue:
		return tv.CanonicalString()
	case value.StringValue:
		return tv.Value
	case value.BoolValue:
		if tv.Value {
			return "TRUE"
		}
		return "FALSE"
	case value.ErrorValue:
		return tv.Kind_.Spelling()
	default:
		return fmt.Sprintf("%v", v)
	}
}
