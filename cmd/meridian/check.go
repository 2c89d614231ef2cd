package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tessera-hq/meridian/pkg/policy/engine"
	"tessera-hq/meridian/pkg/scope"
)

var checkFlags struct {
	bot    string
	scopes string

	// content flags
	id       string
	path     string
	category string
	tags     []string
	metadata []string
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check a topic or retrieval candidate against a bot's policy",
	Long: `Check enforcement questions against a bot's resolved policy.

Subcommands:
  topic    - Check whether a text is on-topic for the bot
  content  - Check whether a document passes the bot's dataset filters`,
}

var checkTopicCmd = &cobra.Command{
	Use:   "topic [text]",
	Short: "Check whether a text is on-topic for a bot",
	Long: `Check a text against the bot's topic guardrails.

The outcome is three-valued:
  allowed       - the text matched the allow-list
  forbidden     - the text hit a forbidden topic, or missed a configured
                  allow-list entirely
  unrestricted  - the bot has no allow-list; nothing forbidden matched

Examples:
  meridian check topic --bot support-bot "returns and refunds"
  meridian check topic --bot support-bot --scopes ./scopes "order status"`,
	Args: cobra.ExactArgs(1),
	RunE: checkTopic,
}

var checkContentCmd = &cobra.Command{
	Use:   "content",
	Short: "Check whether a document passes a bot's dataset filters",
	Long: `Check a document description against the bot's merged dataset filters.

Admission is exclude-first: a document matching any exclude pattern is
rejected no matter what else matches. Remaining rules (tags, categories,
metadata, include patterns) must all admit the document.

Examples:
  meridian check content --bot support-bot --path docs/faq/returns.md --tag public
  meridian check content --bot support-bot --id kb-123 --category faq --meta dept=support`,
	RunE: checkContent,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.AddCommand(checkTopicCmd, checkContentCmd)

	checkCmd.PersistentFlags().StringVarP(&checkFlags.bot, "bot", "b", "", "bot id (required)")
	checkCmd.PersistentFlags().StringVar(&checkFlags.scopes, "scopes", "", "scope file or directory (overrides config)")

	checkContentCmd.Flags().StringVar(&checkFlags.id, "id", "", "document id")
	checkContentCmd.Flags().StringVar(&checkFlags.path, "path", "", "document path")
	checkContentCmd.Flags().StringVar(&checkFlags.category, "category", "", "document category")
	checkContentCmd.Flags().StringSliceVar(&checkFlags.tags, "tag", nil, "document tag (repeatable)")
	checkContentCmd.Flags().StringSliceVar(&checkFlags.metadata, "meta", nil, "document metadata key=value (repeatable)")
}

func checkTopic(cmd *cobra.Command, args []string) error {
	if checkFlags.bot == "" {
		return fmt.Errorf("--bot is required")
	}
	ctx := cmd.Context()

	stack, err := buildStack(ctx, checkFlags.scopes)
	if err != nil {
		return err
	}
	defer stack.Close()

	policy, err := stack.enforcer.Resolve(ctx, checkFlags.bot, stack.manager.ActiveScopesForBot(checkFlags.bot))
	if err != nil {
		return commandResolveError("check topic", err)
	}

	decision := stack.enforcer.CheckTopic(policy, args[0])
	fmt.Println(decision)

	if decision == engine.DecisionForbidden && policy.RefusalMessage != "" {
		fmt.Printf("refusal: %s\n", policy.RefusalMessage)
	}
	return nil
}

func checkContent(cmd *cobra.Command, args []string) error {
	if checkFlags.bot == "" {
		return fmt.Errorf("--bot is required")
	}
	if checkFlags.id == "" && checkFlags.path == "" {
		return fmt.Errorf("at least one of --id or --path must be specified")
	}
	ctx := cmd.Context()

	stack, err := buildStack(ctx, checkFlags.scopes)
	if err != nil {
		return err
	}
	defer stack.Close()

	policy, err := stack.enforcer.Resolve(ctx, checkFlags.bot, stack.manager.ActiveScopesForBot(checkFlags.bot))
	if err != nil {
		return commandResolveError("check content", err)
	}

	metadata := make(map[string]string, len(checkFlags.metadata))
	for _, kv := range checkFlags.metadata {
		key, value, found := strings.Cut(kv, "=")
		if !found {
			return fmt.Errorf("invalid --meta %q: expected key=value", kv)
		}
		metadata[key] = value
	}

	doc := &scope.Document{
		ID:       checkFlags.id,
		Path:     checkFlags.path,
		Category: checkFlags.category,
		Tags:     checkFlags.tags,
		Metadata: metadata,
	}

	if stack.enforcer.IsContentAdmitted(policy, doc) {
		fmt.Println("admitted")
	} else {
		fmt.Println("rejected")
	}
	return nil
}
