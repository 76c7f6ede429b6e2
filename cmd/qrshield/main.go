// Command qrshield is the command line front end to the scanning pipeline:
// scan QR images or decoded content, analyze URLs and validate UPI handles
// without running the API server.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"qrshield/internal/domain/models"
	"qrshield/internal/domain/services"
	"qrshield/internal/qrdecode"
	"qrshield/internal/urlexpand"
	"qrshield/pkg/logger"
)

var (
	outputJSON bool
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "qrshield",
		Short: "QR code fraud detection toolkit",
		Long: `qrshield analyzes QR codes for fraud: image tampering detection,
phishing URL analysis and UPI payment handle validation.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "print the full report as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scanCmd(), urlCmd(), upiCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *logger.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logger.New(logger.Config{Level: level, Format: "console"})
}

func newScanner(log *logger.Logger) *services.Scanner {
	decoder := qrdecode.NewDecoder(nil, log)
	expander := urlexpand.NewHTTPExpander(10*time.Second, log)
	urls := services.NewURLAnalyzer(services.DefaultURLTables(), expander, log)
	upi := services.NewUPIValidator(models.BankSuffixes, log)
	images := services.NewImageAnalyzer(decoder, log)
	classifier := services.NewContentClassifier(log)
	return services.NewScanner(decoder, images, urls, upi, classifier, nil, true, log)
}

func scanCmd() *cobra.Command {
	var imagePath string

	cmd := &cobra.Command{
		Use:   "scan [content]",
		Short: "Scan QR content or an image file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			scanner := newScanner(log)

			var result *models.ScanResult
			switch {
			case imagePath != "":
				data, err := os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("reading image: %w", err)
				}
				result = scanner.ScanImage(cmd.Context(), data)
			case len(args) == 1:
				result = scanner.ScanContent(cmd.Context(), args[0])
			default:
				return fmt.Errorf("provide decoded content or --image")
			}

			if outputJSON {
				return printJSON(result)
			}
			printScanResult(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "path to a QR image file")
	return cmd
}

func urlCmd() *cobra.Command {
	var noExpand bool

	cmd := &cobra.Command{
		Use:   "url <url>",
		Short: "Analyze a URL for phishing indicators",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			expander := urlexpand.NewHTTPExpander(10*time.Second, log)
			analyzer := services.NewURLAnalyzer(services.DefaultURLTables(), expander, log)

			result := analyzer.Analyze(cmd.Context(), args[0], !noExpand)
			if outputJSON {
				return printJSON(result)
			}

			fmt.Printf("URL:            %s\n", result.URL)
			if result.IsShortened {
				fmt.Printf("Shortened:      yes\n")
				if result.ExpandedURL != "" {
					fmt.Printf("Expands to:     %s\n", result.ExpandedURL)
				}
			}
			fmt.Printf("Risk score:     %d/100\n", result.RiskScore)
			fmt.Printf("Risk level:     %s\n", result.RiskLevel)
			for _, warning := range result.Warnings {
				fmt.Printf("  ! %s\n", warning)
			}
			fmt.Printf("%s\n", result.Recommendation)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noExpand, "no-expand", false, "do not resolve shortened URLs")
	return cmd
}

func upiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upi <upi-id>",
		Short: "Validate a UPI payment handle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			validator := services.NewUPIValidator(models.BankSuffixes, log)

			result := validator.Validate(args[0])
			if outputJSON {
				return printJSON(result)
			}

			fmt.Printf("UPI ID:         %s\n", result.UPIID)
			fmt.Printf("Status:         %s\n", result.Status)
			if result.Bank != "" {
				fmt.Printf("Provider:       %s\n", result.Bank)
			}
			if result.Message != "" {
				fmt.Printf("Message:        %s\n", result.Message)
			}
			fmt.Printf("Risk score:     %d/100\n", result.RiskScore)
			fmt.Printf("Risk level:     %s\n", result.RiskLevel)
			return nil
		},
	}
}

func printScanResult(result *models.ScanResult) {
	fmt.Printf("Scan ID:        %s\n", result.ID)
	fmt.Printf("Content type:   %s\n", result.ContentType)
	if result.RawContent != "" {
		fmt.Printf("Content:        %s\n", result.RawContent)
	}
	if result.Image != nil {
		fmt.Printf("Image masked:   %v (score %d/100)\n", result.Image.IsMasked, result.Image.RiskScore)
	}
	fmt.Printf("Risk score:     %d/100\n", result.RiskScore)
	fmt.Printf("Risk level:     %s\n", result.RiskLevel)
	for _, warning := range result.Warnings {
		fmt.Printf("  ! %s\n", warning)
	}
	fmt.Printf("%s\n", result.Recommendation)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
