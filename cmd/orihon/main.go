package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/orihon/orihon/internal/builder"
	"github.com/orihon/orihon/internal/epub"
	"github.com/orihon/orihon/internal/project"
)

var logger = log.New(os.Stderr)

var rootCmd = &cobra.Command{
	Use:   "orihon",
	Short: "Build fixed-layout, image-based EPUB books",
	Long: `orihon builds fixed-layout EPUB 3 books from page images declared in
an orihon.yaml description file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			logger.SetLevel(log.DebugLevel)
		}
	},
}

var newCmd = &cobra.Command{
	Use:   "new [files...]",
	Short: "Create a new book description in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(project.FileName); err == nil {
			return fmt.Errorf("%s already exists", project.FileName)
		}

		title, _ := cmd.Flags().GetString("title")
		author, _ := cmd.Flags().GetString("author")
		identifier, _ := cmd.Flags().GetString("identifier")

		b := project.Scaffold(project.ScaffoldOptions{
			Title:      title,
			Author:     author,
			Identifier: identifier,
			Files:      args,
		})
		if err := project.Save(project.FileName, b); err != nil {
			return err
		}

		logger.Info("created description", "path", project.FileName, "title", b.Metadata.PrimaryTitle())
		return nil
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the EPUB archive from the book description",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		path, err := project.Find(wd)
		if err != nil {
			return err
		}
		logger.Debug("found description", "path", path)

		b, err := project.Load(path)
		if err != nil {
			return err
		}

		root := filepath.Dir(path)
		bl := builder.New(root, b, logger)
		bl.DescriptionPath = path

		pkg, err := bl.Build()
		if err != nil {
			return err
		}
		entries, err := pkg.Entries()
		if err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = filepath.Join(root, pkg.Title+".epub")
		}
		if err := epub.WriteArchive(output, entries, pkg.Modified); err != nil {
			return err
		}

		logger.Info("wrote archive", "path", output, "pages", b.Pages())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	newCmd.Flags().StringP("title", "t", "", "Main title of the book (default: current directory name)")
	newCmd.Flags().StringP("author", "a", "", "Author of the book")
	newCmd.Flags().StringP("identifier", "i", "", "Identifier URN (default: a fresh urn:uuid)")

	buildCmd.Flags().StringP("output", "o", "", "Output file path (default: <title>.epub next to the description)")

	rootCmd.AddCommand(newCmd, buildCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}
