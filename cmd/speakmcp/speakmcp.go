// Package speakmcpcmder is the root speakmcp command.
package speakmcpcmder

import (
	"github.com/spf13/cobra"

	authcmder "github.com/speakmcp/speakmcp-cli/cmd/speakmcp/auth"
	chatcmder "github.com/speakmcp/speakmcp-cli/cmd/speakmcp/chat"
	configcmder "github.com/speakmcp/speakmcp-cli/cmd/speakmcp/config"
	errorscmder "github.com/speakmcp/speakmcp-cli/cmd/speakmcp/errors"
	healthcmder "github.com/speakmcp/speakmcp-cli/cmd/speakmcp/health"
	historycmder "github.com/speakmcp/speakmcp-cli/cmd/speakmcp/history"
	journalcmder "github.com/speakmcp/speakmcp-cli/cmd/speakmcp/journal"
	memoriescmder "github.com/speakmcp/speakmcp-cli/cmd/speakmcp/memories"
	mockcmder "github.com/speakmcp/speakmcp-cli/cmd/speakmcp/mock"
	presetscmder "github.com/speakmcp/speakmcp-cli/cmd/speakmcp/presets"
	profilescmder "github.com/speakmcp/speakmcp-cli/cmd/speakmcp/profiles"
	sendcmder "github.com/speakmcp/speakmcp-cli/cmd/speakmcp/send"
	serverscmder "github.com/speakmcp/speakmcp-cli/cmd/speakmcp/servers"
	settingscmder "github.com/speakmcp/speakmcp-cli/cmd/speakmcp/settings"
	skillscmder "github.com/speakmcp/speakmcp-cli/cmd/speakmcp/skills"
	statuscmder "github.com/speakmcp/speakmcp-cli/cmd/speakmcp/status"
	stopcmder "github.com/speakmcp/speakmcp-cli/cmd/speakmcp/stop"
	toolscmder "github.com/speakmcp/speakmcp-cli/cmd/speakmcp/tools"
	versioncmder "github.com/speakmcp/speakmcp-cli/cmd/version"
	"github.com/speakmcp/speakmcp-cli/pkg/cmdenv"
	"github.com/speakmcp/speakmcp-cli/pkg/config"
)

const speakmcpLongDesc string = `SpeakMCP CLI talks to the SpeakMCP desktop app's remote server.

Without a subcommand it starts an interactive chat, or sends a single
message with -m:
  speakmcp                      Start an interactive chat
  speakmcp -m "hello"           Send one message and exit
  speakmcp -c <id>              Continue a conversation interactively

Configuration lives in cli.toml in the speakmcp config directory. Server
and API key can also come from SPEAKMCP_SERVER_URL and SPEAKMCP_API_KEY.`

const speakmcpShortDesc string = "SpeakMCP - command line agent client"

type speakmcpCommander struct {
	server       string
	apiKey       string
	message      string
	conversation string
}

func NewSpeakmcpCmd() *cobra.Command {
	cmder := &speakmcpCommander{}

	cmd := &cobra.Command{
		Use:          "speakmcp",
		Short:        speakmcpShortDesc,
		Long:         speakmcpLongDesc,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmder.message != "" {
				return sendcmder.Send(cmd, sendcmder.Options{
					Message:        cmder.message,
					ConversationID: cmder.conversation,
				})
			}
			return chatcmder.Interactive(cmd, chatcmder.Options{
				ConversationID: cmder.conversation,
			})
		},
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.BoolP(cmdenv.FlagDebug, "d", false, "Enable debug logging")
	pf.String(cmdenv.FlagConfigDir, "", "Override path to the speakmcp config directory")
	pf.Bool(cmdenv.FlagJSON, false, "Output in JSON format")
	pf.String(cmdenv.FlagLogFile, "", "Also write debug logs as JSON to this file")
	pf.String(cmdenv.FlagDumpStream, "", "Append raw SSE response bodies to this file")
	config.AddPersistentStringFlag(cmd, config.Flags, config.FlagServer, &cmder.server)
	config.AddPersistentStringFlag(cmd, config.Flags, config.FlagAPIKey, &cmder.apiKey)

	cmd.Flags().StringVarP(&cmder.message, "message", "m", "", "Message to send (non-interactive)")
	cmd.Flags().StringVarP(&cmder.conversation, "conversation", "c", "", "Conversation ID to continue")

	// Add subcommands
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(sendcmder.NewSendCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(serverscmder.NewServersCmd())
	cmd.AddCommand(profilescmder.NewProfilesCmd())
	cmd.AddCommand(toolscmder.NewToolsCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(settingscmder.NewSettingsCmd())
	cmd.AddCommand(stopcmder.NewStopCmd())
	cmd.AddCommand(memoriescmder.NewMemoriesCmd())
	cmd.AddCommand(presetscmder.NewPresetsCmd())
	cmd.AddCommand(skillscmder.NewSkillsCmd())
	cmd.AddCommand(healthcmder.NewHealthCmd())
	cmd.AddCommand(errorscmder.NewErrorsCmd())
	cmd.AddCommand(journalcmder.NewJournalCmd())
	cmd.AddCommand(mockcmder.NewMockCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
