package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nuln/doctree"
)

var (
	lsCmd = &cobra.Command{
		Use:   "ls [location]",
		Short: "List the children of a folder (default: the root)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  ls,
	}

	findCmd = &cobra.Command{
		Use:   "find <name> [location]",
		Short: "Find a child by exact name",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  find,
	}

	treeCmd = &cobra.Command{
		Use:   "tree [location]",
		Short: "Print every document below a folder",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tree,
	}

	idsOnly bool
)

func init() {
	lsCmd.Flags().BoolVar(&idsOnly, "ids", false, "Print document IDs only")

	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(treeCmd)
}

// folderArg returns the location in args[i], or root when absent.
func folderArg(args []string, i int, root doctree.Location) (doctree.Location, error) {
	if len(args) <= i {
		return root, nil
	}
	return doctree.ParseLocation(args[i])
}

func kind(isDir bool) string {
	if isDir {
		return "d"
	}
	return "-"
}

func ls(cmd *cobra.Command, args []string) error {
	_, resolver, root, err := setup()
	if err != nil {
		return err
	}
	folder, err := folderArg(args, 0, root)
	if err != nil {
		return err
	}

	if idsOnly {
		for _, id := range resolver.Client().ListIdentifiers(cmd.Context(), folder) {
			fmt.Println(id)
		}
		return nil
	}

	for _, row := range resolver.Client().List(cmd.Context(), folder) {
		fmt.Printf("%s %-24s %s\n", kind(row.IsDir()), row.Name(), doctree.ChildLocation(folder, row.ID))
	}
	return nil
}

func find(cmd *cobra.Command, args []string) error {
	_, resolver, root, err := setup()
	if err != nil {
		return err
	}
	folder, err := folderArg(args, 1, root)
	if err != nil {
		return err
	}

	doc, ok := resolver.FindDocument(cmd.Context(), folder, args[0])
	if !ok {
		return errors.Wrapf(doctree.ErrNotFound, "%s in %s", args[0], folder)
	}
	fmt.Printf("%s %s\n", kind(doc.IsDir()), doc.Location)
	return nil
}

func tree(cmd *cobra.Command, args []string) error {
	_, resolver, root, err := setup()
	if err != nil {
		return err
	}
	folder, err := folderArg(args, 0, root)
	if err != nil {
		return err
	}

	return doctree.Walk(cmd.Context(), resolver.Client(), folder, func(p string, doc *doctree.Document) error {
		fmt.Printf("%s %s\n", kind(doc.IsDir()), p)
		return nil
	})
}
