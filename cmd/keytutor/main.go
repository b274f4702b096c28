// Command keytutor is the terminal entry point for the adaptive typing
// trainer: it loads saved progress, drives one drill at a time against raw
// keystroke input, and persists results as each drill finishes.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/haricheung/keytutor/internal/applog"
	"github.com/haricheung/keytutor/internal/config"
	"github.com/haricheung/keytutor/internal/coordinator"
	"github.com/haricheung/keytutor/internal/keyboard"
	"github.com/haricheung/keytutor/internal/session"
	"github.com/haricheung/keytutor/internal/skilltree"
	"github.com/haricheung/keytutor/internal/store"
)

func main() {
	_ = godotenv.Load(".env")

	cacheDir := defaultCacheDir()
	_ = os.MkdirAll(cacheDir, 0o755)

	if f, err := os.OpenFile(filepath.Join(cacheDir, "debug.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
		log.SetOutput(f)
		slog.SetDefault(slog.New(slog.NewJSONHandler(f, nil)))
		defer f.Close()
	}

	var (
		wordCount = flag.Int("words", 0, "override the drill word count for this run (0 = use saved config)")
		layout    = flag.String("layout", "", "override the keyboard layout for this run: qwerty, dvorak, or colemak")
		theme     = flag.String("theme", "", "override the theme name for this run")
	)
	flag.Parse()

	cfg := config.Load()
	if *theme != "" {
		cfg.Theme = *theme
	}
	if *wordCount > 0 {
		cfg.WordCount = *wordCount
	}
	if *layout != "" {
		cfg.KeyboardLayout = *layout
	}
	cfg.Clamp()

	kbModel, ok := keyboard.FromName(cfg.KeyboardLayout)
	if !ok {
		kbModel, _ = keyboard.FromName("qwerty")
	}

	st, err := store.New(store.DefaultBaseDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "keytutor: could not open data store: %v\n", err)
		os.Exit(1)
	}

	logReg := applog.NewRegistry(filepath.Join(cacheDir, "sessions"))
	sessionID := uuid.NewString()
	sessionLog := logReg.Open(sessionID)

	c := loadCoordinator(st, cfg.TargetCPM(), sessionLog)
	c.FingerDescriber = func(ch rune) string {
		fa, ok := kbModel.FingerForChar(ch)
		if !ok {
			return ""
		}
		return fa.Finger.String()
	}

	raw, err := enableRawMode()
	if err != nil {
		fmt.Fprintf(os.Stderr, "keytutor: failed to enter raw terminal mode: %v\n", err)
		os.Exit(1)
	}
	defer raw.pause()

	// SIGTERM can arrive at any point (terminal close, process manager
	// shutdown); restore cooked mode before the process dies so the user's
	// shell isn't left in raw mode.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)
	go func() {
		<-sigCh
		raw.pause()
		os.Exit(1)
	}()

	keys := startKeyReader()

	status := runMenuLoop(c, st, &cfg, keys, raw, cacheDir, sessionLog)
	logReg.Close(sessionID, status)

	raw.pause()
	fmt.Print("\r\n")
}

func defaultCacheDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "keytutor")
}

// loadCoordinator loads persisted profile/stats/history into a fresh
// Coordinator and rebuilds the n-gram statistics from the history. When an
// import was interrupted mid-commit it instead rebuilds all derived state
// from drill history; a missing or corrupt profile loads as the default
// profile.
func loadCoordinator(st *store.Store, targetCPM float64, sessionLog *applog.SessionLog) *coordinator.Coordinator {
	c := coordinator.New(targetCPM, rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0xC0FFEE)))
	c.DrillHistory = st.LoadDrillHistory().Drills

	if st.CheckInterruptedImport() {
		slog.Warn("detected interrupted import on startup, rebuilding derived state from drill history")
		sessionLog.Corruption("profile", "profile.json", true, "interrupted import detected, rebuilt from drill history")
		c.RebuildFromHistory()
		return c
	}

	profileData := st.LoadProfile()
	c.SkillTree = skilltree.New(profileData.SkillTree)
	c.Profile = coordinator.Profile{
		TotalScore:      profileData.TotalScore,
		TotalDrills:     profileData.TotalDrills,
		StreakDays:      profileData.StreakDays,
		BestStreak:      profileData.BestStreak,
		LastPracticeDay: profileData.LastPracticeDay,
		SkillTree:       profileData.SkillTree,
	}

	store.ApplyKeyStatsData(c.KeyStats, st.LoadKeyStats())
	store.ApplyKeyStatsData(c.RankedKeyStats, st.LoadRankedKeyStats())
	c.RebuildNgramStats()

	return c
}

func persist(c *coordinator.Coordinator, st *store.Store) {
	_ = st.SaveProfile(store.ProfileData{
		SchemaVersion:   store.SchemaVersion,
		TotalScore:      c.Profile.TotalScore,
		TotalDrills:     c.Profile.TotalDrills,
		StreakDays:      c.Profile.StreakDays,
		BestStreak:      c.Profile.BestStreak,
		LastPracticeDay: c.Profile.LastPracticeDay,
		SkillTree:       c.Profile.SkillTree,
	})
	_ = st.SaveKeyStats(store.ToKeyStatsData(c.KeyStats))
	_ = st.SaveRankedKeyStats(store.ToKeyStatsData(c.RankedKeyStats))
	_ = st.SaveDrillHistory(store.DrillHistoryData{
		SchemaVersion: store.SchemaVersion,
		Drills:        c.DrillHistory,
	})
}

// runMenuLoop presents the top-level menu and dispatches into a practice
// loop until the user quits. Returns the session status ("completed" or
// "abandoned" on interrupt) for the caller to record in the session log.
func runMenuLoop(c *coordinator.Coordinator, st *store.Store, cfg *config.Config, keys <-chan byte, raw *rawMode, cacheDir string, sessionLog *applog.SessionLog) string {
	for {
		fmt.Print("\r\n\x1b[1mkeytutor\x1b[0m\r\n")
		fmt.Printf("score %.0f · drills %d · streak %d\r\n", c.Profile.TotalScore, c.Profile.TotalDrills, c.Profile.StreakDays)
		fmt.Print("(p)ractice, (c)ode drill, (a) passage drill, (o)ptions, (q)uit\r\n")

		choice := readMenuChoice(keys, "pcaoq")
		switch choice {
		case 'q':
			return "completed"
		case 'o':
			runOptionsPrompt(cfg, raw, cacheDir)
			continue
		case 'c':
			c.Mode = coordinator.Code
		case 'a':
			c.Mode = coordinator.Passage
		default:
			c.Mode = coordinator.Adaptive
		}

		if abandoned := runDrillLoop(c, st, cfg, keys, sessionLog); abandoned {
			return "abandoned"
		}
	}
}

// runDrillLoop runs drills back-to-back in the coordinator's current mode
// until the user retries down to quitting, persisting after every finished
// drill. Returns true if the loop ended via an interrupt (ctrl-c) rather
// than a normal quit-to-menu.
func runDrillLoop(c *coordinator.Coordinator, st *store.Store, cfg *config.Config, keys <-chan byte, sessionLog *applog.SessionLog) bool {
	passageIndex := len(c.DrillHistory)
	var retryText, retrySource string
	for {
		text, source := retryText, retrySource
		if text == "" {
			text, source = c.GenerateText(*cfg)
		}
		retryText, retrySource = "", ""
		if strings.TrimSpace(text) == "" {
			fmt.Print("\r\nno text available for this mode yet (try enabling downloads in settings)\r\n")
			return false
		}

		sessionLog.PassageBegin(passageIndex, c.Scope.Branch().Key(), source, cfg.WordCount)

		d := session.NewDrill(text)
		var events []session.KeystrokeEvent
		action := runOneDrill(d, &events, keys, source)

		switch action {
		case actionInterrupt:
			result := c.FinishPartialDrill(d, events)
			persist(c, st)
			sessionLog.PassageEnd(passageIndex, result.WPM, result.Accuracy, result.Incorrect)
			return true
		default:
			result := c.FinishDrill(d, events)
			persist(c, st)
			sessionLog.PassageEnd(passageIndex, result.WPM, result.Accuracy, result.Incorrect)
			printResult(result)
			if m, ok := c.PopMilestone(); ok {
				printMilestone(m)
			}
			c.ArmPostDrillInputLock()
		}
		passageIndex++

		drain(keys, c.PostDrillInputLockRemaining())
		fmt.Print("\r\n(n)ext, (r)etry, (q)uit to menu\r\n")
		switch readMenuChoice(keys, "nrq") {
		case 'q':
			return false
		case 'r':
			retryText, retrySource = text, source
		}
	}
}

type drillAction int

const (
	actionDone drillAction = iota
	actionInterrupt
)

// runOneDrill drives the raw-keystroke input loop for a single drill,
// redrawing progress after every keystroke. Grounded on the gophertype
// reference's runTypingSession loop, adapted to route keystrokes through
// session.ProcessChar/ProcessBackspace instead of hand-rolled state.
func runOneDrill(d *session.Drill, events *[]session.KeystrokeEvent, keys <-chan byte, source string) drillAction {
	fmt.Print("\x1b[2J\x1b[H")
	if source != "" {
		fmt.Printf("source: %s\r\n\r\n", source)
	}
	printDrillLine(d)

	for {
		if d.IsComplete() {
			return actionDone
		}

		b := <-keys
		if isInterrupt(b) {
			return actionInterrupt
		}
		if b == byteEscape {
			drainEscapeSequence(keys)
			continue
		}
		if isBackspaceByte(b) {
			session.ProcessBackspace(d)
			printDrillLine(d)
			continue
		}

		ch := rune(b)
		if isEnterByte(b) {
			ch = '\n'
		} else if b == byteTab {
			ch = '\t'
		}

		ev, ok := session.ProcessChar(d, ch)
		if ok {
			*events = append(*events, ev)
		}
		printDrillLine(d)
	}
}

func printDrillLine(d *session.Drill) {
	fmt.Print("\r\x1b[K")
	for i, ch := range d.Target {
		switch {
		case i < d.Cursor && d.Input[i].Correct:
			fmt.Printf("\x1b[32m%c\x1b[0m", ch)
		case i < d.Cursor:
			fmt.Printf("\x1b[31m%c\x1b[0m", ch)
		case i == d.Cursor:
			fmt.Printf("\x1b[7m%c\x1b[0m", ch)
		default:
			fmt.Printf("%c", ch)
		}
	}
}

func printResult(r session.Result) {
	fmt.Printf("\r\n\r\nwpm %.1f · accuracy %.1f%% · errors %d\r\n", r.WPM, r.Accuracy, r.Incorrect)
}

func printMilestone(m coordinator.Milestone) {
	fmt.Printf("\r\n*** %s ***\r\n", m.Message)
	for _, fi := range m.FingerInfo {
		fmt.Printf("  %c — %s\r\n", fi.Key, fi.Description)
	}
}

// runOptionsPrompt drops out of raw mode to run a line-editing prompt (word
// count, code language) via readline, the same library and Config shape the
// teacher's REPL uses, then saves the updated config and re-enters raw mode.
func runOptionsPrompt(cfg *config.Config, raw *rawMode, cacheDir string) {
	raw.pause()
	defer raw.resume()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "\x1b[36moptions>\x1b[0m ",
		HistoryFile: filepath.Join(cacheDir, "options_history"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "keytutor: readline init error: %v\n", err)
		return
	}
	defer rl.Close()

	fmt.Printf("\r\ncurrent: words=%d code_language=%s passage_book=%s\r\n", cfg.WordCount, cfg.CodeLanguage, cfg.PassageBook)
	fmt.Print("enter: \"words <n>\", \"lang <key>\", \"book <key>\", or blank to return\r\n")

	for {
		line, err := rl.Readline()
		if err != nil {
			return
		}
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) == 0 {
			return
		}
		switch fields[0] {
		case "words":
			if len(fields) < 2 {
				continue
			}
			var n int
			if _, err := fmt.Sscanf(fields[1], "%d", &n); err == nil {
				cfg.WordCount = n
				cfg.Clamp()
			}
		case "lang":
			if len(fields) >= 2 {
				cfg.CodeLanguage = fields[1]
			}
		case "book":
			if len(fields) >= 2 {
				cfg.PassageBook = fields[1]
			}
		default:
			continue
		}
		_ = config.Save(*cfg)
		fmt.Printf("saved: words=%d code_language=%s passage_book=%s\r\n", cfg.WordCount, cfg.CodeLanguage, cfg.PassageBook)
	}
}
