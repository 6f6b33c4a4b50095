// Command bqdump is the native-dump CLI: it toggles the dump-to-file
// sentinel a running process's BufferQueue watches (EnableDump plus
// the /data/bq_dump sentinel file), and summarizes the
// bq_<pid>_<name>_<nowUsec>_<w>x<h>.raw files that trigger produces.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

const sentinelPath = "/data/bq_dump"

var dumpFileRE = regexp.MustCompile(`^bq_(\d+)_(.+)_(\d+)_(\d+)x(\d+)\.raw$`)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "enable":
		runEnable(os.Args[2:])
	case "disable":
		runDisable(os.Args[2:])
	case "status":
		runStatus(os.Args[2:])
	case "list":
		runList(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: bqdump <enable|disable|status|list> [flags]")
}

func runEnable(args []string) {
	fs := flag.NewFlagSet("enable", flag.ExitOnError)
	sentinel := fs.String("sentinel", sentinelPath, "dump sentinel file path")
	fs.Parse(args)

	f, err := os.Create(*sentinel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bqdump: enable: %v\n", err)
		os.Exit(1)
	}
	f.Close()
	fmt.Printf("dump sentinel created at %s; call BufferQueue.EnableDump(true) in the target process to start dumping\n", *sentinel)
}

func runDisable(args []string) {
	fs := flag.NewFlagSet("disable", flag.ExitOnError)
	sentinel := fs.String("sentinel", sentinelPath, "dump sentinel file path")
	fs.Parse(args)

	if err := os.Remove(*sentinel); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "bqdump: disable: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("dump sentinel removed at %s\n", *sentinel)
}

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	sentinel := fs.String("sentinel", sentinelPath, "dump sentinel file path")
	fs.Parse(args)

	if _, err := os.Stat(*sentinel); err == nil {
		fmt.Printf("enabled (%s exists)\n", *sentinel)
		return
	}
	fmt.Printf("disabled (%s absent)\n", *sentinel)
}

// dumpFile is one parsed bq_<pid>_<name>_<nowUsec>_<w>x<h>.raw entry.
type dumpFile struct {
	path          string
	pid           int
	name          string
	timestampUsec int64
	width, height int
	sizeBytes     int64
}

// parseDumpFileName extracts a dumpFile's fields from a
// bq_<pid>_<name>_<nowUsec>_<w>x<h>.raw basename.
func parseDumpFileName(name string) (dumpFile, bool) {
	m := dumpFileRE.FindStringSubmatch(name)
	if m == nil {
		return dumpFile{}, false
	}
	pid, _ := strconv.Atoi(m[1])
	ts, _ := strconv.ParseInt(m[3], 10, 64)
	w, _ := strconv.Atoi(m[4])
	h, _ := strconv.Atoi(m[5])
	return dumpFile{pid: pid, name: m[2], timestampUsec: ts, width: w, height: h}, true
}

func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	dir := fs.String("dir", ".", "directory to scan for dump files")
	fs.Parse(args)

	entries, err := os.ReadDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bqdump: list: %v\n", err)
		os.Exit(1)
	}

	var files []dumpFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		df, ok := parseDumpFileName(e.Name())
		if !ok {
			continue
		}
		df.path = filepath.Join(*dir, e.Name())
		if info, err := e.Info(); err == nil {
			df.sizeBytes = info.Size()
		}
		files = append(files, df)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].timestampUsec < files[j].timestampUsec })

	if len(files) == 0 {
		fmt.Println("no dump files found")
		return
	}
	for _, f := range files {
		fmt.Printf("%s  pid=%d queue=%s tsUsec=%d dims=%dx%d size=%dKiB\n",
			f.path, f.pid, f.name, f.timestampUsec, f.width, f.height, f.sizeBytes/1024)
	}
}
