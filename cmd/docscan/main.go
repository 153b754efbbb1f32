package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"document-insight/internal/config"
	"document-insight/internal/service"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	keywordsFlag string
	outFlag      string
)

var rootCmd = &cobra.Command{
	Use:   "docscan",
	Short: "Document understanding pipeline",
	Long: "docscan rasterizes PDF, image, and slide-deck documents, recognizes " +
		"their text, and extracts structured content as JSON.",
}

var processCmd = &cobra.Command{
	Use:   "process [file]",
	Short: "Process a document and print the structured result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if outFlag != "" {
			os.Setenv("OUTPUT_PATH", outFlag)
		}

		container, err := config.NewContainer()
		if err != nil {
			return err
		}

		keywords := service.ParseKeywords(keywordsFlag)
		result, err := container.Pipeline.Process(cmd.Context(), args[0], keywords)
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(result, "", "    ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

func init() {
	processCmd.Flags().StringVar(&keywordsFlag, "keywords", "", "comma-separated keywords for the abstract")
	processCmd.Flags().StringVar(&outFlag, "out", "", "path of the persisted result JSON")
	rootCmd.AddCommand(processCmd)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
