// Package askcmder provides the ask command for one-off tutor questions
// answered in-process.
package askcmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/cmd/coursewise/stack"
	"github.com/papercomputeco/coursewise/pkg/cliui"
	"github.com/papercomputeco/coursewise/pkg/config"
	"github.com/papercomputeco/coursewise/pkg/logger"
	"github.com/papercomputeco/coursewise/pkg/pipeline"
	"github.com/papercomputeco/coursewise/pkg/prompt"
	"github.com/papercomputeco/coursewise/pkg/utils"
)

var (
	modeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

const maxQueryEcho = 72

type askCommander struct {
	query        string
	topicID      string
	courseID     string
	mode         string
	strict       bool
	mastery      float64
	studentLevel string
	asJSON       bool

	vectorProv   string
	vectorTarget string
	embedProv    string
	embedModel   string
	genProv      string
	genTarget    string
	genModel     string
	namespace    string
	minScore     float64

	debug  bool
	logger *zap.Logger
}

const askLongDesc string = `Ask the tutor a question from the command line.

Builds the same pipeline as "coursewise serve" in-process: retrieves curriculum
for the topic (falling back to the course), prompts the configured model in
the chosen mode, screens the answer and prints it as rendered markdown.

Modes:
  learning           Full explanations grounded in the curriculum (default)
  practice           Hints and guiding questions, no direct answers
  assessment-soft    Brief clarifications during an assessment
  assessment-strict  No curriculum, refuses to give answers

Examples:
  coursewise ask "What does the mitochondria do?" --topic bio-cells --course bio-101
  coursewise ask "Is osmosis passive?" --topic bio-cells --mode practice --mastery 0.8
  coursewise ask "What is ATP?" --topic bio-cells --json
  coursewise ask "What's the answer to question 3?" --topic bio-cells --strict`

const askShortDesc string = "Ask the tutor a question"

var askFlags = []string{
	config.FlagVectorStoreProv,
	config.FlagVectorStoreTgt,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingModel,
	config.FlagGenerationProv,
	config.FlagGenerationTgt,
	config.FlagGenerationModel,
	config.FlagNamespace,
	config.FlagMinScore,
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.query = args[0]

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			mode, err := prompt.ParseMode(cmder.mode)
			if err != nil {
				return err
			}
			if cmder.strict {
				mode = prompt.ModeAssessmentStrict
			}

			cfg, configDir, err := stack.LoadConfig(cmd, askFlags)
			if err != nil {
				return err
			}

			return cmder.run(cmd.Context(), cfg, configDir, mode)
		},
	}

	cmd.Flags().StringVarP(&cmder.topicID, "topic", "t", "", "Topic to retrieve curriculum from")
	cmd.Flags().StringVarP(&cmder.courseID, "course", "c", "", "Course to fall back to when the topic is thin")
	cmd.Flags().StringVarP(&cmder.mode, "mode", "m", string(prompt.ModeLearning), "Pipeline mode (learning, practice, assessment-soft, assessment-strict)")
	cmd.Flags().BoolVar(&cmder.strict, "strict", false, "Shorthand for --mode assessment-strict")
	cmd.Flags().Float64Var(&cmder.mastery, "mastery", 0, "Student mastery score between 0 and 1")
	cmd.Flags().StringVar(&cmder.studentLevel, "level", "", "Student level, e.g. \"high school\"")
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print the full answer as JSON")

	fs := config.ProviderFlags
	config.AddStringFlag(cmd, fs, config.FlagVectorStoreProv, &cmder.vectorProv)
	config.AddStringFlag(cmd, fs, config.FlagVectorStoreTgt, &cmder.vectorTarget)
	config.AddStringFlag(cmd, fs, config.FlagEmbeddingProv, &cmder.embedProv)
	config.AddStringFlag(cmd, fs, config.FlagEmbeddingModel, &cmder.embedModel)
	config.AddStringFlag(cmd, fs, config.FlagGenerationProv, &cmder.genProv)
	config.AddStringFlag(cmd, fs, config.FlagGenerationTgt, &cmder.genTarget)
	config.AddStringFlag(cmd, fs, config.FlagGenerationModel, &cmder.genModel)
	config.AddStringFlag(cmd, fs, config.FlagNamespace, &cmder.namespace)
	config.AddFloat64Flag(cmd, fs, config.FlagMinScore, &cmder.minScore)

	return cmd
}

func (c *askCommander) run(ctx context.Context, cfg *config.Config, configDir string, mode prompt.Mode) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	st, err := stack.Build(ctx, cfg, stack.Options{ConfigDir: configDir}, c.logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	var answer *pipeline.GeneratedAnswer
	if mode.IsAssessment() {
		answer, err = st.Assessment.Answer(ctx, pipeline.AssessmentRequest{
			Query:        c.query,
			TopicID:      c.topicID,
			CourseID:     c.courseID,
			StrictMode:   mode == prompt.ModeAssessmentStrict,
			StudentLevel: c.studentLevel,
			MasteryScore: c.mastery,
		})
	} else {
		answer, err = st.Tutor.Answer(ctx, pipeline.TutorRequest{
			Query:        c.query,
			TopicID:      c.topicID,
			CourseID:     c.courseID,
			Mode:         mode,
			StudentLevel: c.studentLevel,
			MasteryScore: c.mastery,
		})
	}
	if err != nil {
		return err
	}

	return renderAnswer(os.Stdout, c.query, answer, c.asJSON)
}

func renderAnswer(w io.Writer, query string, answer *pipeline.GeneratedAnswer, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	}

	fmt.Fprintf(w, "\n  %s %s  %s\n",
		cliui.HeadingStyle.Render("Q:"),
		cliui.ValueStyle.Render(utils.Truncate(query, maxQueryEcho)),
		modeStyle.Render(fmt.Sprintf("[%s]", answer.Mode)),
	)

	body, err := cliui.RenderMarkdown(answer.Text)
	if err != nil {
		body = answer.Text + "\n"
	}
	fmt.Fprint(w, body)

	if answer.Moderated {
		fmt.Fprintf(w, "  %s\n", warningStyle.Render("The generated answer was withheld by moderation."))
	}

	if len(answer.Concepts) > 0 {
		fmt.Fprintf(w, "  %s %s\n",
			cliui.KeyStyle.Render("Concepts:"),
			cliui.ValueStyle.Render(strings.Join(answer.Concepts, ", ")),
		)
	}

	if len(answer.Sources) > 0 {
		fmt.Fprintf(w, "  %s\n", cliui.KeyStyle.Render("Sources:"))
		for _, s := range answer.Sources {
			fmt.Fprintf(w, "    %s %s\n",
				cliui.DimStyle.Render(s.ID),
				scoreStyle.Render(fmt.Sprintf("(%.2f)", s.Relevance)),
			)
		}
	}

	fmt.Fprintf(w, "  %s\n\n", cliui.DimStyle.Render(fmt.Sprintf("%d tokens", answer.Usage.TotalTokens)))
	return nil
}
