package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tessera-hq/meridian/pkg/cli"
	"tessera-hq/meridian/pkg/policy/engine"
)

var resolveFlags struct {
	bot    string
	scopes string
	format string
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve the effective policy for a bot",
	Long: `Resolve the scopes assigned to a bot into a single effective policy.

Resolution merges all of the bot's active scopes: topic lists are unioned
with forbidden topics winning over allowed ones, knowledge boundaries and
response guidelines take the most restrictive value, and dataset filters
combine with deny-wins semantics. Conflicting metadata requirements are a
fatal error.

A bot with no scope assignments resolves to the fully permissive default
policy.

Examples:
  # Resolve against the configured scope source
  meridian resolve --bot support-bot

  # Resolve against a specific scope directory
  meridian resolve --bot support-bot --scopes ./scopes

  # JSON output
  meridian resolve --bot support-bot --format json`,
	RunE: resolvePolicy,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVarP(&resolveFlags.bot, "bot", "b", "", "bot id to resolve (required)")
	resolveCmd.Flags().StringVar(&resolveFlags.scopes, "scopes", "", "scope file or directory (overrides config)")
	resolveCmd.Flags().StringVar(&resolveFlags.format, "format", "text", "output format: text, json")
	_ = resolveCmd.MarkFlagRequired("bot")
}

func resolvePolicy(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	stack, err := buildStack(ctx, resolveFlags.scopes)
	if err != nil {
		return err
	}
	defer stack.Close()

	scopes := stack.manager.ActiveScopesForBot(resolveFlags.bot)

	policy, err := stack.enforcer.Resolve(ctx, resolveFlags.bot, scopes)
	if err != nil {
		if engine.IsConflict(err) {
			return cli.NewCommandErrorWithCode("resolve",
				fmt.Errorf("scope conflict: %w", err), cli.ExitPolicyConflict)
		}
		return cli.NewCommandError("resolve", err)
	}

	if resolveFlags.format == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(os.Stdout, policy)
	}

	printPolicy(resolveFlags.bot, policy)
	return nil
}

func printPolicy(botID string, p *engine.EffectivePolicy) {
	fmt.Printf("Effective policy for %s (fingerprint %s)\n", botID, p.Fingerprint)
	fmt.Printf("  Contributing scopes:  %s\n", orNone(strings.Join(p.ScopeIDs, ", ")))
	fmt.Printf("  Allowed topics:       %s\n", orNone(strings.Join(p.AllowedTopics, ", ")))
	fmt.Printf("  Forbidden topics:     %s\n", orNone(strings.Join(p.ForbiddenTopics, ", ")))
	fmt.Printf("  Strict mode:          %v\n", p.Boundaries.StrictMode)
	fmt.Printf("  Context preference:   %s\n", p.Boundaries.Preference)
	fmt.Printf("  Allowed sources:      %s\n", orNone(strings.Join(p.Boundaries.AllowedSources, ", ")))
	fmt.Printf("  Max response length:  %d\n", p.Response.MaxResponseLength)
	fmt.Printf("  Citations required:   %v\n", p.Response.RequireCitations)
	fmt.Printf("  Refusal message:      %s\n", orNone(p.RefusalMessage))
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
