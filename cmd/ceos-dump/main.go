package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/d21d3q/goceos/pkg/ceos"
)

var (
	rootCmd = &cobra.Command{
		Use:   "ceos-dump <file>",
		Short: "Decode CEOS product records",
		Long:  "ceos-dump decodes the records of a CEOS leader, trailer or image file and prints their fields.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dec, err := newDecoder()
			if err != nil {
				return err
			}
			return run(cmd.Context(), dec, args[0], cmd.OutOrStdout())
		},
	}

	listCmd = &cobra.Command{
		Use:   "types",
		Short: "List the record types the decoder knows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dec, err := newDecoder()
			if err != nil {
				return err
			}
			for _, name := range dec.Variants() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	configPath  string
	layoutPaths []string
	offset      int64
	format      string
	permissive  bool
	verbose     bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringSliceVar(&layoutPaths, "layout", nil, "extra YAML layout file (repeatable)")
	rootCmd.PersistentFlags().BoolVar(&permissive, "permissive", false, "skip layout and record length validation")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every decoded record")
	rootCmd.Flags().Int64Var(&offset, "offset", -1, "decode only the record at this byte offset")
	rootCmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")
	rootCmd.AddCommand(listCmd)
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.Fatal(err)
	}
}

func newDecoder() (*ceos.Decoder, error) {
	opts := ceos.Options{}
	if configPath != "" {
		fromFile, lvl, err := ceos.OptionsFromConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		opts = fromFile
		logrus.SetLevel(lvl)
	}
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	opts.Permissive = opts.Permissive || permissive
	opts.LayoutFiles = append(opts.LayoutFiles, layoutPaths...)
	opts.Logger = logrus.StandardLogger()
	return ceos.NewDecoder(opts)
}

func run(ctx context.Context, dec *ceos.Decoder, path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if offset >= 0 {
		rec, err := dec.Decode(f, offset)
		if err != nil {
			return err
		}
		return printRecords(out, []*ceos.Record{rec})
	}
	recs, err := dec.DecodeAll(ctx, f)
	if perr := printRecords(out, recs); perr != nil {
		return perr
	}
	if err != nil {
		logrus.WithError(err).WithField("records", len(recs)).Warn("stopped decoding")
		return err
	}
	logrus.WithField("records", len(recs)).Info("decoded file")
	return nil
}

func printRecords(out io.Writer, recs []*ceos.Record) error {
	switch format {
	case "json":
		for _, rec := range recs {
			fmt.Fprintln(out, rec.String())
		}
		return nil
	case "yaml":
		docs := make([]map[string]any, 0, len(recs))
		for _, rec := range recs {
			docs = append(docs, map[string]any{
				"variant": rec.Variant,
				"start":   rec.Start,
				"tag":     rec.Descriptor.Tag.String(),
				"length":  rec.Descriptor.Length,
				"fields":  rec.Map(),
			})
		}
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(docs)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
