package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage cached pattern embeddings",
	Long: `Pattern embeddings are cached per corpus fingerprint, embedding space,
model and facet, so the corpus is only encoded again when it changes.`,
}

var cacheBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Encode and cache the pattern embeddings",
	RunE:  runCacheBuild,
}

var cachePurgeAll bool

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove embeddings of other corpus versions",
	RunE:  runCachePurge,
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the corpus fingerprint and cached entries",
	RunE:  runCacheInfo,
}

func init() {
	cachePurgeCmd.Flags().BoolVar(&cachePurgeAll, "all", false, "remove every cached entry")
	cacheCmd.AddCommand(cacheBuildCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
	cacheCmd.AddCommand(cacheInfoCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheBuild(cmd *cobra.Command, _ []string) error {
	if err := initCache(cmd.Context(), true); err != nil {
		return err
	}
	if cacheService == nil {
		return errors.New("cache service not configured")
	}
	if err := cacheService.Warm(cmd.Context()); err != nil {
		return err
	}
	cmd.Printf("Embeddings cached for corpus %s\n", cacheService.Fingerprint())
	return nil
}

func runCachePurge(cmd *cobra.Command, _ []string) error {
	if err := initCache(cmd.Context(), false); err != nil {
		return err
	}
	if cacheService == nil {
		return errors.New("cache service not configured")
	}
	n, err := cacheService.PurgeStale(cmd.Context(), cachePurgeAll)
	if err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}
	cmd.Printf("Removed %d cached entries\n", n)
	return nil
}

func runCacheInfo(cmd *cobra.Command, _ []string) error {
	if err := initCache(cmd.Context(), false); err != nil {
		return err
	}
	if cacheService == nil {
		return errors.New("cache service not configured")
	}
	fingerprint := cacheService.Fingerprint()
	entries, err := cacheService.Entries(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing entries: %w", err)
	}

	cmd.Printf("Corpus fingerprint: %s\n", fingerprint)
	if len(entries) == 0 {
		cmd.Println("No cached embeddings.")
		return nil
	}
	cmd.Printf("Cached entries: %d\n\n", len(entries))
	for _, e := range entries {
		marker := " "
		if e.Fingerprint != fingerprint {
			marker = "*"
		}
		cmd.Printf("%s %s  %-9s  %-9s  %s (%d dims)\n", marker, short(e.Fingerprint), e.Space, e.Facet, e.Model, e.Dimensions)
	}
	cmd.Println()
	cmd.Println("* stale: removed by 'ppltr cache purge'")
	return nil
}

func short(fingerprint string) string {
	if len(fingerprint) > 12 {
		return fingerprint[:12]
	}
	return fingerprint
}
