// Command gosom runs a compiled SOM class image.
//
// Usage:
//
//	gosom -image program.somi [-entry Main] [-selector run] [args...]
//	gosom -manifest som.toml [args...]
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/somvm/gosom/manifest"
	"github.com/somvm/gosom/vm"
)

var log = commonlog.GetLogger("gosom")

func main() {
	os.Exit(run())
}

func run() int {
	var (
		imagePath    string
		manifestPath string
		entry        string
		selector     string
		maxDepth     int
		gcThreshold  int
		verbose      int
	)
	flag.StringVar(&imagePath, "image", "", "path to a compiled class image")
	flag.StringVar(&manifestPath, "manifest", "", "path to som.toml")
	flag.StringVar(&entry, "entry", "", "entry class (overrides image/manifest)")
	flag.StringVar(&selector, "selector", "", "entry selector (overrides image/manifest)")
	flag.IntVar(&maxDepth, "max-depth", 0, "frame depth limit (0 = default)")
	flag.IntVar(&gcThreshold, "gc-threshold", 0, "allocations between collections (0 = default)")
	flag.IntVar(&verbose, "v", 0, "log verbosity (0-2)")
	flag.Parse()

	commonlog.Configure(verbose, nil)

	args := flag.Args()

	if manifestPath != "" {
		m, err := manifest.Load(manifestPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		imagePath = m.Program.Image
		if entry == "" {
			entry = m.Program.Entry
		}
		if selector == "" {
			selector = m.EntrySelector()
		}
		if maxDepth == 0 {
			maxDepth = m.Runtime.MaxFrameDepth
		}
		if gcThreshold == 0 {
			gcThreshold = m.Runtime.GCThreshold
		}
		if len(args) == 0 {
			args = m.Program.Args
		}
	}
	if imagePath == "" {
		fmt.Fprintln(os.Stderr, "gosom: -image or -manifest is required")
		flag.Usage()
		return 2
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gosom:", err)
		return 2
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	machine := vm.New(vm.Options{
		MaxDepth:    maxDepth,
		GCThreshold: gcThreshold,
		Out:         out,
		Arguments:   args,
	})

	imgEntry, imgSelector, err := machine.LoadImage(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gosom:", err)
		return 2
	}
	if entry == "" {
		entry = imgEntry
	}
	if selector == "" {
		selector = imgSelector
	}
	if entry == "" {
		fmt.Fprintln(os.Stderr, "gosom: image has no entry class and none was given")
		return 2
	}

	log.Infof("running %s>>%s from %s", entry, selector, imagePath)

	_, err = machine.Run(entry, selector)
	out.Flush()
	if err == nil {
		return 0
	}

	var exit *vm.ExitRequest
	if errors.As(err, &exit) {
		return exit.Code
	}
	var internal *vm.InternalError
	if errors.As(err, &internal) {
		fmt.Fprintln(os.Stderr, "gosom:", internal)
		return 2
	}
	fmt.Fprintln(os.Stderr, "gosom:", err)
	return 1
}
