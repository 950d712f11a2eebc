package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"mediasearch/src/core/search"
	"mediasearch/src/storage/postgres/providerctrl"
)

// providersCmd represents the providers command
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Inspect or seed the provider configuration store",
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured semantic search providers",
	Run:   ListProviders,
}

var providersSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed provider rows from a JSON file",
	Run:   SeedProviders,
}

func init() {
	rootCmd.AddCommand(providersCmd)
	providersCmd.AddCommand(providersListCmd)
	providersCmd.AddCommand(providersSeedCmd)
	providersSeedCmd.Flags().StringP("input", "i", "", "Input JSON file path")
	providersSeedCmd.MarkFlagRequired("input")
}

func openProviderStore() (*providerctrl.ProviderService, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		viper.GetString("postgres.host"),
		viper.GetString("postgres.user"),
		viper.GetString("postgres.password"),
		viper.GetString("postgres.db"),
		viper.GetString("postgres.port"))
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&providerctrl.Provider{}); err != nil {
		return nil, fmt.Errorf("failed to migrate provider table: %w", err)
	}
	return providerctrl.NewProviderService(db)
}

func ListProviders(cmd *cobra.Command, args []string) {
	store, err := openProviderStore()
	if err != nil {
		fmt.Printf("Failed to open provider store: %v\n", err)
		return
	}

	providers, err := store.ListProviders(context.Background())
	if err != nil {
		fmt.Printf("Failed to list providers: %v\n", err)
		return
	}

	for _, p := range providers {
		fmt.Printf("%s\t%s\t%s\tsemantic=%v\tdefault=%v\tmedia=%v\n",
			p.ID, p.Architecture, p.Location, p.Semantic, p.Default, p.MediaTypes)
	}
	fmt.Printf("%d providers configured\n", len(providers))
}

type seedEntry struct {
	Name          string   `json:"name"`
	Architecture  string   `json:"architecture"`
	Location      string   `json:"location"`
	MediaTypes    []string `json:"mediaTypes"`
	Semantic      bool     `json:"semantic"`
	Default       bool     `json:"default"`
	Endpoint      string   `json:"endpoint"`
	CredentialRef string   `json:"credentialRef"`
}

func SeedProviders(cmd *cobra.Command, args []string) {
	inputPath, _ := cmd.Flags().GetString("input")

	data, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Printf("Failed to read input file: %v\n", err)
		return
	}

	var entries []seedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		fmt.Printf("Failed to parse JSON: %v\n", err)
		return
	}

	store, err := openProviderStore()
	if err != nil {
		fmt.Printf("Failed to open provider store: %v\n", err)
		return
	}

	ctx := context.Background()
	for _, e := range entries {
		cfg := search.ProviderConfig{
			Architecture:  search.ProviderArchitecture(e.Architecture),
			Location:      search.ProviderLocation(e.Location),
			MediaTypes:    e.MediaTypes,
			Semantic:      e.Semantic,
			Default:       e.Default,
			Endpoint:      e.Endpoint,
			CredentialRef: e.CredentialRef,
		}
		if _, err := store.Create(ctx, cfg, e.Name); err != nil {
			fmt.Printf("Failed to seed provider %s: %v\n", e.Name, err)
			return
		}
		fmt.Printf("Seeded provider %s\n", e.Name)
	}
}
