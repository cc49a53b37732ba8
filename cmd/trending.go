package cmd

import (
	"context"
	"fmt"
	"log"

	"submerge/config"
	"submerge/core/discovery"

	"github.com/spf13/cobra"
)

var trendingCategory string

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Fetch trending tracks from the discovery provider",
	Long:  `Fetch a trending category from the configured discovery provider and print the normalized tracks.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		client := discovery.NewClient(cfg.DiscoveryBaseURL, cfg.DiscoveryAppName, cfg.DiscoveryTimeout)

		cat, ok := discovery.CategoryByKey(trendingCategory)
		if !ok {
			log.Fatalf("Unknown category: %s", trendingCategory)
		}

		tracks := client.FetchCategory(context.Background(), cat)
		fmt.Printf("%s: %d tracks\n", cat.Title, len(tracks))
		for _, t := range tracks {
			fmt.Printf("  %s - %s (%s)\n", t.Title, t.ArtistName, t.Genre)
		}
	},
}

func init() {
	rootCmd.AddCommand(trendingCmd)
	trendingCmd.Flags().StringVarP(&trendingCategory, "category", "c", "top10Weekly", "category key to fetch")
}
