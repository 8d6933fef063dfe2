package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func (c *cli) rewriteCmd() *cobra.Command {
	var style, section string
	cmd := &cobra.Command{
		Use:   "rewrite <text>",
		Short: "Rewrite a piece of resume text with the AI assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := c.newClient().Rewrite(cmd.Context(), strings.Join(args, " "), style, section)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, text)
			return nil
		},
	}
	cmd.Flags().StringVar(&style, "style", "professional", "professional, executive or creative")
	cmd.Flags().StringVar(&section, "section", "", "summary, experience or empty for generic text")
	return cmd
}

func (c *cli) analyzeCmd() *cobra.Command {
	var resumeFile, jobFile string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score a resume against a job description",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, job, err := readJobInputs(resumeFile, jobFile)
			if err != nil {
				return err
			}
			analysis, err := c.newClient().AnalyzeJob(cmd.Context(), data, job)
			if err != nil {
				return err
			}
			return c.printJSON(analysis)
		},
	}
	addJobFlags(cmd, &resumeFile, &jobFile)
	return cmd
}

func (c *cli) coverLetterCmd() *cobra.Command {
	var resumeFile, jobFile string
	cmd := &cobra.Command{
		Use:   "cover-letter",
		Short: "Draft a cover letter for a resume and job description",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, job, err := readJobInputs(resumeFile, jobFile)
			if err != nil {
				return err
			}
			letter, err := c.newClient().CoverLetter(cmd.Context(), data, job)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, letter)
			return nil
		},
	}
	addJobFlags(cmd, &resumeFile, &jobFile)
	return cmd
}

func addJobFlags(cmd *cobra.Command, resumeFile, jobFile *string) {
	cmd.Flags().StringVar(resumeFile, "resume", "", "path to the resume JSON")
	cmd.Flags().StringVar(jobFile, "job", "", "path to a text file with the job description")
	_ = cmd.MarkFlagRequired("resume")
	_ = cmd.MarkFlagRequired("job")
}

func readJobInputs(resumeFile, jobFile string) (json.RawMessage, string, error) {
	data, err := os.ReadFile(resumeFile)
	if err != nil {
		return nil, "", fmt.Errorf("reading resume: %w", err)
	}
	if !json.Valid(data) {
		return nil, "", fmt.Errorf("%s is not valid JSON", resumeFile)
	}
	job, err := os.ReadFile(jobFile)
	if err != nil {
		return nil, "", fmt.Errorf("reading job description: %w", err)
	}
	return json.RawMessage(data), string(job), nil
}
