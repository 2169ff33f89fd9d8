// refdump - inspect class-like declarations from parsed source
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/tliron/commonlog"

	"github.com/A-jay98/parser-reflection/locator"
	"github.com/A-jay98/parser-reflection/native"
	"github.com/A-jay98/parser-reflection/provider"
	"github.com/A-jay98/parser-reflection/reflection"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose logging")
	root := flag.String("C", ".", "Directory to search for reflection.toml (walks up)")
	list := flag.Bool("list", false, "List every discovered class-like symbol and exit")
	method := flag.String("m", "", "Dump only the named method of each class")
	snapshot := flag.String("snapshot", "", "Write a structural snapshot of parsed declarations to this file")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: refdump [options] [Class\\Name ...]\n\n")
		fmt.Fprintf(os.Stderr, "Reflects the named classes from source and prints their method dumps.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  refdump -list                      # Show everything the locator finds\n")
		fmt.Fprintf(os.Stderr, "  refdump 'App\\Model\\User'           # Dump one class\n")
		fmt.Fprintf(os.Stderr, "  refdump -m greet 'App\\Model\\User'  # Dump a single method\n")
		fmt.Fprintf(os.Stderr, "  refdump -C ./project 'App\\Order' -snapshot cache.cbor\n")
	}
	flag.Parse()

	if *verbose {
		commonlog.Configure(1, nil)
	} else {
		commonlog.Configure(0, nil)
	}

	m, err := locator.FindAndLoad(*root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading manifest: %v\n", err)
		os.Exit(1)
	}
	if m == nil {
		fmt.Fprintf(os.Stderr, "No reflection.toml found in %s or any parent directory\n", *root)
		os.Exit(1)
	}

	loc := locator.NewLocator(m)
	prov := provider.New(loc)
	reg := native.NewRegistry()

	if *list {
		if err := listSymbols(loc); err != nil {
			fmt.Fprintf(os.Stderr, "Error scanning sources: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	failed := false
	for _, name := range flag.Args() {
		if err := dumpClass(prov, reg, name, *method); err != nil {
			fmt.Fprintf(os.Stderr, "Error reflecting %s: %v\n", name, err)
			if errors.Is(err, provider.ErrNotFound) {
				fmt.Fprintf(os.Stderr, "  (is it declared under the manifest's source dirs?)\n")
			}
			failed = true
		}
	}

	if *snapshot != "" {
		if err := prov.WriteSnapshot(*snapshot); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing snapshot: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Snapshot written to %s\n", *snapshot)
	}

	if failed {
		os.Exit(1)
	}
}

func listSymbols(loc *locator.Locator) error {
	if err := loc.Scan(); err != nil {
		return err
	}
	syms := loc.Symbols()
	sort.Slice(syms, func(i, j int) bool { return syms[i].Name < syms[j].Name })
	for _, s := range syms {
		fmt.Printf("%-10s %s\t%s\n", s.Kind, s.Name, s.File)
	}
	return nil
}

func dumpClass(prov *provider.Provider, reg *native.Registry, name, methodName string) error {
	cd, err := reflection.NewClassDescriptor(prov, reg, name)
	if err != nil {
		return err
	}

	if methodName != "" {
		m, err := cd.Method(methodName)
		if err != nil {
			return err
		}
		fmt.Println(m.ToDisplayString())
		return nil
	}

	kind := "Class"
	switch {
	case cd.IsInterface():
		kind = "Interface"
	case cd.IsEnum():
		kind = "Enum"
	}
	fmt.Printf("%s [ %s ] declared in %s\n\n", kind, cd.Name(), cd.FileName())

	for _, m := range cd.Methods() {
		fmt.Println(m.ToDisplayString())
	}
	return nil
}
