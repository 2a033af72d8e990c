package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"issue-classifier/internal/domain/entity"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <file|url>",
	Short: "Classify a local image or an image URL and print the verdict as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

var describeFlag bool

func init() {
	classifyCmd.Flags().BoolVar(&describeFlag, "describe", false, "also generate a description when the image is accepted")
}

type classifyOutput struct {
	Success bool `json:"success"`
	*entity.ClassificationVerdict
	Description string `json:"description,omitempty"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	_, c, cleanup, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer cleanup()
	svc := c.ClassificationService

	target := args[0]
	var (
		verdict *entity.ClassificationVerdict
		source  *entity.SourceImage
	)
	if isURL(target) {
		verdict, err = svc.ClassifyURL(ctx, target)
	} else {
		data, readErr := os.ReadFile(target)
		if readErr != nil {
			return fmt.Errorf("read image: %w", readErr)
		}
		source = &entity.SourceImage{Data: data}
		verdict, err = svc.ClassifyBytes(ctx, data)
	}
	if err != nil {
		return err
	}

	out := classifyOutput{Success: true, ClassificationVerdict: verdict}
	if describeFlag && verdict.IsValid && verdict.IssueType != nil {
		if source != nil {
			out.Description, err = svc.Describe(ctx, source, *verdict.IssueType)
		} else {
			out.Description, err = svc.DescribeURL(ctx, target, *verdict.IssueType)
		}
		if err != nil {
			return err
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

var issueTypesCmd = &cobra.Command{
	Use:   "issue-types",
	Short: "List the supported issue types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, e := range entity.TaxonomyEntries() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-34s %s\n", e.IssueType, e.ClassName, e.Label)
		}
		return nil
	},
}
