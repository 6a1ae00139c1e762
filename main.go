package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"mdviewer/app"
	"mdviewer/archive"
	"mdviewer/config"
	"mdviewer/keys"
	"mdviewer/library"
	"mdviewer/log"
	"mdviewer/markdown"
	"mdviewer/ui"
)

var (
	version     = "0.3.0"
	verboseFlag bool
	plainFlag   bool
	widthFlag   int
	parserFlag  string
	formatFlag  string

	rootCmd = &cobra.Command{
		Use:   "mdviewer [folder | archive.mdlz]",
		Short: "mdviewer - browse folders of Markdown documents in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			log.Initialize(false)
			defer log.Close()

			cfg := config.LoadConfig()
			if err := keys.InitializeCustomKeyBindings(); err != nil {
				log.ErrorLog.Printf("Failed to load custom keybindings: %v", err)
			}

			var path string
			if len(args) == 1 {
				path = args[0]
			}
			if err := app.Run(ctx, path, cfg); err != nil {
				return fmt.Errorf("error running program: %w", err)
			}
			return nil
		},
	}

	renderCmd = &cobra.Command{
		Use:   "render <file.md>",
		Short: "Render a Markdown document to standard output",
		Args:  cobra.ExactArgs(1),
		RunE: withLogging(func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if plainFlag {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), ui.StripMarkdown(string(data)))
				return err
			}

			cfg := config.LoadConfig()
			if parserFlag != "" {
				cfg.Parser = parserFlag
			}
			base, err := filepath.Abs(filepath.Dir(args[0]))
			if err != nil {
				return err
			}
			return renderDocument(cmd.OutOrStdout(), string(data), base, cfg, terminalWidth())
		}),
	}

	packCmd = &cobra.Command{
		Use:   "pack <folder> [output.mdlz]",
		Short: "Pack a folder of documents into an archive",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withLogging(func(cmd *cobra.Command, args []string) error {
			folder, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			out := defaultArchiveName(folder)
			if len(args) == 2 {
				out = args[1]
			}
			format, err := archive.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			m, err := archive.PackFile(folder, out, &archive.PackOptions{Format: format})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "packed %d files (%s) into %s\n",
				len(m.Files), humanize.Bytes(uint64(m.TotalSize())), out)
			return nil
		}),
	}

	unpackCmd = &cobra.Command{
		Use:   "unpack <archive.mdlz> <dest>",
		Short: "Unpack an archive into a folder",
		Args:  cobra.ExactArgs(2),
		RunE: withLogging(func(cmd *cobra.Command, args []string) error {
			m, err := archive.UnpackFile(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "unpacked %d files (%s) into %s\n",
				len(m.Files), humanize.Bytes(uint64(m.TotalSize())), args[1])
			return nil
		}),
	}

	libraryCmd = &cobra.Command{
		Use:   "library",
		Short: "Manage the library of document folders",
	}

	libraryListCmd = &cobra.Command{
		Use:   "list",
		Short: "List library folders and saved archives",
		Args:  cobra.NoArgs,
		RunE: withLogging(func(cmd *cobra.Command, args []string) error {
			return listLibrary(cmd.OutOrStdout(), library.Open(config.LibraryPath()), config.StorageDir())
		}),
	}

	libraryAddCmd = &cobra.Command{
		Use:   "add <folder>",
		Short: "Add a folder to the library",
		Args:  cobra.ExactArgs(1),
		RunE: withLogging(func(cmd *cobra.Command, args []string) error {
			folder, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if info, err := os.Stat(folder); err != nil {
				return err
			} else if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", folder)
			}
			added, err := library.Open(config.LibraryPath()).Add(folder)
			if err != nil {
				return err
			}
			if !added {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already in the library\n", folder)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", folder)
			return nil
		}),
	}

	libraryPruneCmd = &cobra.Command{
		Use:   "prune",
		Short: "Remove folders that no longer exist from the library",
		Args:  cobra.NoArgs,
		RunE: withLogging(func(cmd *cobra.Command, args []string) error {
			removed, err := library.Open(config.LibraryPath()).Prune()
			if err != nil {
				return err
			}
			for _, f := range removed {
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", f)
			}
			return nil
		}),
	}

	indexCmd = &cobra.Command{
		Use:   "index",
		Short: "Manage the index.json document order of a folder",
	}

	indexInitCmd = &cobra.Command{
		Use:   "init <folder>",
		Short: "Write index.json listing every document in path order",
		Args:  cobra.ExactArgs(1),
		RunE: withLogging(func(cmd *cobra.Command, args []string) error {
			folder, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			idx, err := library.GenerateIndex(folder)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s with %d entries\n",
				filepath.Join(folder, library.IndexFileName), len(idx.Entries))
			return nil
		}),
	}

	debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "Print debug info like config paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			data, err := toml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config: %s\n%s\n", config.ConfigPath(), data)
			fmt.Fprintf(out, "Keybindings: %s\n", config.KeyBindingsPath())
			fmt.Fprintf(out, "Library: %s\n", config.LibraryPath())
			fmt.Fprintf(out, "Storage: %s\n", config.StorageDir())
			fmt.Fprintf(out, "Log: %s\n", log.FileName())
			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of mdviewer",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mdviewer version %s\n", version)
		},
	}
)

// withLogging turns on the log file for a subcommand when --verbose is set.
func withLogging(run func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if verboseFlag {
			log.Initialize(true)
			defer log.Close()
		}
		return run(cmd, args)
	}
}

// terminalWidth is the width of stdout, or widthFlag when set.
func terminalWidth() int {
	if widthFlag > 0 {
		return widthFlag
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// defaultArchiveName is where pack writes when no output is given.
func defaultArchiveName(folder string) string {
	name := filepath.Base(filepath.Clean(folder))
	if name == string(filepath.Separator) || name == "." {
		name = "root"
	}
	return name + archive.Extension
}

// renderDocument renders doc through the terminal host.
func renderDocument(w io.Writer, doc, base string, cfg *config.Config, width int) error {
	session := markdown.NewSession(nil)
	opts := []ui.StyledTextOption{ui.WithImageWidth(cfg.ImageMaxWidth)}
	if cfg.OSC8 != "off" {
		opts = append(opts, ui.WithHyperlinks(func(tag string) (string, bool) {
			l, ok := session.Link(tag)
			return l.URL, ok
		}))
	}
	text := ui.NewStyledText(ui.ThemeByName(cfg.Theme), opts...)
	instrs := markdown.Render(doc, base, session,
		markdown.WithParser(markdown.ParseParser(cfg.Parser)),
		markdown.WithImageLoader(markdown.ImageLoader{Extended: cfg.ExtendedImages}),
	)
	markdown.Apply(text, instrs, session)
	_, err := fmt.Fprintln(w, text.Render(width))
	return err
}

// listLibrary prints the library folders and the saved archives.
func listLibrary(w io.Writer, lib *library.Library, storageDir string) error {
	folders, err := lib.Folders()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Library:")
	if len(folders) == 0 {
		fmt.Fprintln(w, "  (empty)")
	}
	for _, f := range folders {
		line := "  " + f
		if rev, ok, err := library.FolderRevision(f); err == nil && ok {
			line += "  " + rev.Short()
		}
		fmt.Fprintln(w, line)
	}

	saved, err := library.SavedArchives(storageDir)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Saved archives:")
	if len(saved) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, a := range saved {
		fmt.Fprintf(w, "  %s  %s\n", a.Name, humanize.Bytes(uint64(a.Size)))
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"Write logs to stderr as well as the log file")

	renderCmd.Flags().BoolVar(&plainFlag, "plain", false, "Print the visible text without styling")
	renderCmd.Flags().IntVarP(&widthFlag, "width", "w", 0, "Wrap width (default: terminal width)")
	renderCmd.Flags().StringVar(&parserFlag, "parser", "",
		"Block parser: "+strings.Join([]string{"auto", string(markdown.ParserStructured), string(markdown.ParserLines)}, ", "))

	packCmd.Flags().StringVarP(&formatFlag, "format", "f", string(archive.FormatZip), "Archive format: zip or tar.xz")

	libraryCmd.AddCommand(libraryListCmd, libraryAddCmd, libraryPruneCmd)
	indexCmd.AddCommand(indexInitCmd)

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(packCmd)
	rootCmd.AddCommand(unpackCmd)
	rootCmd.AddCommand(libraryCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
