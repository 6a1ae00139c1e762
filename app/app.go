package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"

	"mdviewer/archive"
	"mdviewer/config"
	"mdviewer/keys"
	"mdviewer/library"
	"mdviewer/log"
	"mdviewer/markdown"
	"mdviewer/ui"
	"mdviewer/ui/overlay"
	"mdviewer/util"
)

// maxErrorLog bounds the error log.
const maxErrorLog = 100

// wheelLines is how far one mouse wheel notch scrolls a document.
const wheelLines = 3

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

// Run is the main entrypoint into the application. A non-empty path is
// opened straight away: a folder is added to the library first, a saved
// archive is unpacked to a temporary folder.
func Run(ctx context.Context, path string, cfg *config.Config) error {
	h := newHome(ctx, cfg, library.Open(config.LibraryPath()), config.StorageDir())
	defer h.cleanup()

	log.SetCommandLogger(NewCommandLoggerAdapter(h.logPane))
	defer log.SetCommandLogger(nil)

	if path != "" {
		h.initCmds = append(h.initCmds, h.openPath(path))
	}

	p := tea.NewProgram(
		h,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(), // Mouse scroll and link clicks
	)
	_, err := p.Run()
	return err
}

type state int

const (
	// stateLauncher lists the library folders and saved archives.
	stateLauncher state = iota
	// stateViewer shows the documents of the open folder in tabs.
	stateViewer
	// stateHelp is the state when the help screen is displayed.
	stateHelp
	// stateErrorLog is the state when displaying the error log.
	stateErrorLog
	// stateCommandLog is the state when displaying launched commands.
	stateCommandLog
	// statePrompt is the state when the user is typing a path.
	statePrompt
	// stateKeybindingEditor is the state when editing keybindings.
	stateKeybindingEditor
)

// promptKind says what a submitted path prompt does.
type promptKind int

const (
	promptOpenDir promptKind = iota
	promptSaveFolder
)

type home struct {
	ctx context.Context

	// -- Storage and Configuration --

	appConfig  *config.Config
	theme      ui.Theme
	library    *library.Library
	storageDir string
	// opener launches activated links.
	opener markdown.Opener

	// -- State --

	state  state
	prompt promptKind
	// keySent is used to manage underlining menu items
	keySent bool
	// initCmds run once the program starts.
	initCmds []tea.Cmd

	// folder is the open folder, empty in the launcher.
	folder string
	// revision describes the git checkout of folder, if any.
	revision string
	// tempDir is the folder an opened archive was unpacked to. It is removed
	// when the viewer goes back to the launcher.
	tempDir string

	width  int
	height int

	// -- UI Components --

	list         *ui.LibraryList
	menu         *ui.Menu
	tabbedWindow *ui.TabbedWindow
	errBox       *ui.ErrBox
	// spinner shows while documents render in the background
	spinner spinner.Model
	// logPane lists external commands, mostly the link opener
	logPane *ui.LogPane

	textOverlay             *overlay.TextOverlay
	textInputOverlay        *overlay.TextInputOverlay
	keybindingEditorOverlay *overlay.KeybindingEditorOverlay

	// errorLog stores all error messages for display
	errorLog []string
}

func newHome(ctx context.Context, cfg *config.Config, lib *library.Library, storageDir string) *home {
	h := &home{
		ctx:          ctx,
		appConfig:    cfg,
		theme:        ui.ThemeByName(cfg.Theme),
		library:      lib,
		storageDir:   storageDir,
		opener:       util.URLOpener{},
		state:        stateLauncher,
		spinner:      spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		list:         ui.NewLibraryList(),
		menu:         ui.NewMenu(),
		tabbedWindow: ui.NewTabbedWindow(),
		errBox:       ui.NewErrBox(),
		logPane:      ui.NewLogPane(),
	}

	if removed, err := lib.Prune(); err != nil {
		h.initCmds = append(h.initCmds, h.handleError(err))
	} else if len(removed) > 0 {
		log.InfoLog.Printf("library: pruned missing folders %v", removed)
	}
	if err := h.refreshLauncher(); err != nil {
		h.initCmds = append(h.initCmds, h.handleError(err))
	}
	return h
}

// refreshLauncher reloads the library folders and saved archives.
func (m *home) refreshLauncher() error {
	folders, err := m.library.Folders()
	if err != nil {
		return err
	}
	folderItems := make([]ui.Item, 0, len(folders))
	for _, f := range folders {
		rev, ok, err := library.FolderRevision(f)
		if err != nil {
			log.WarningLog.Printf("could not read revision of %s: %v", f, err)
		}
		folderItems = append(folderItems, ui.FolderItem(f, rev, ok))
	}

	saved, err := library.SavedArchives(m.storageDir)
	if err != nil {
		return err
	}
	archiveItems := make([]ui.Item, 0, len(saved))
	for _, a := range saved {
		archiveItems = append(archiveItems, ui.ArchiveItem(a))
	}
	m.list.SetItems(folderItems, archiveItems)
	return nil
}

// updateHandleWindowSizeEvent sets the sizes of the components.
// The components will try to render inside their bounds.
func (m *home) updateHandleWindowSizeEvent(msg tea.WindowSizeMsg) {
	m.width, m.height = msg.Width, msg.Height

	// One row each for the menu and the error box.
	contentHeight := max(msg.Height-2, 1)
	m.tabbedWindow.SetSize(msg.Width, contentHeight)
	m.list.SetSize(msg.Width, contentHeight)
	m.menu.SetSize(msg.Width, 1)
	m.errBox.SetSize(int(float32(msg.Width)*0.9), 1)

	w, h := m.overlaySize()
	if m.textOverlay != nil {
		m.textOverlay.SetSize(w, h)
	}
	if m.textInputOverlay != nil {
		m.textInputOverlay.SetWidth(w)
	}
	m.logPane.SetSize(w-6, h-4)
}

// overlaySize is the size of a centred overlay.
func (m *home) overlaySize() (int, int) {
	return max(int(float32(m.width)*0.8), 40), max(int(float32(m.height)*0.8), 10)
}

func (m *home) Init() tea.Cmd {
	return tea.Batch(append([]tea.Cmd{m.spinner.Tick}, m.initCmds...)...)
}

func (m *home) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case hideErrMsg:
		m.errBox.Clear()
	case keyupMsg:
		m.menu.ClearKeydown()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case renderDoneMsg:
		return m, m.handleRenderDone(msg)
	case savedMsg:
		return m, m.handleSaved(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.updateHandleWindowSizeEvent(msg)
		return m, nil
	case error:
		return m, m.handleError(msg)
	}
	return m, nil
}

// screen is the state underneath any overlay.
func (m *home) screen() state {
	if m.folder != "" {
		return stateViewer
	}
	return stateLauncher
}

// closeOverlay returns to the launcher or the viewer.
func (m *home) closeOverlay() {
	m.state = m.screen()
	m.textOverlay = nil
	m.textInputOverlay = nil
	m.keybindingEditorOverlay = nil
	m.menu.SetState(m.menuState())
}

func (m *home) menuState() ui.MenuState {
	if m.screen() == stateViewer {
		return ui.StateViewer
	}
	return ui.StateLauncher
}

func (m *home) handleQuit() (tea.Model, tea.Cmd) {
	m.cleanup()
	return m, tea.Quit
}

// cleanup removes the temporary folder of an opened archive.
func (m *home) cleanup() {
	if m.tempDir == "" {
		return
	}
	if err := os.RemoveAll(m.tempDir); err != nil {
		log.WarningLog.Printf("failed to remove %s: %v", m.tempDir, err)
	}
	m.tempDir = ""
}

func (m *home) handleMenuHighlighting(msg tea.KeyMsg) (cmd tea.Cmd, returnEarly bool) {
	// Handle menu highlighting when you press a button. We intercept it here and immediately return to
	// update the ui while re-sending the keypress. Then, on the next call to this, we actually handle the keypress.
	if m.keySent {
		m.keySent = false
		return nil, false
	}
	if m.state != stateLauncher && m.state != stateViewer {
		return nil, false
	}
	name, ok := keys.GetKeyName(msg.String())
	if !ok {
		return nil, false
	}
	m.keySent = true
	return tea.Batch(
		func() tea.Msg { return msg },
		m.keydownCallback(name)), true
}

func (m *home) handleKeyPress(msg tea.KeyMsg) (mod tea.Model, cmd tea.Cmd) {
	cmd, returnEarly := m.handleMenuHighlighting(msg)
	if returnEarly {
		return m, cmd
	}

	switch m.state {
	case stateHelp, stateErrorLog:
		return m.handleTextOverlayState(msg)
	case stateCommandLog:
		return m.handleCommandLogState(msg)
	case statePrompt:
		return m.handlePromptState(msg)
	case stateKeybindingEditor:
		return m.handleKeybindingEditorState(msg)
	}

	name, ok := keys.GetKeyName(msg.String())
	if !ok {
		return m, nil
	}

	switch name {
	case keys.KeyQuit:
		return m.handleQuit()
	case keys.KeyHelp:
		return m.showHelpScreen()
	case keys.KeyErrorLog:
		return m.showErrorLog()
	case keys.KeyCommandLog:
		m.state = stateCommandLog
		return m, nil
	case keys.KeyEditKeys:
		return m.showKeybindingEditor()
	}

	if m.state == stateViewer {
		return m, m.handleViewerKey(name)
	}
	return m, m.handleLauncherKey(name)
}

func (m *home) handleLauncherKey(name keys.KeyName) tea.Cmd {
	switch name {
	case keys.KeyUp:
		m.list.Up()
	case keys.KeyDown:
		m.list.Down()
	case keys.KeyHome:
		m.list.Home()
	case keys.KeyEnd:
		m.list.End()
	case keys.KeyEnter:
		return m.activateSelected()
	case keys.KeyOpenDir:
		m.showPrompt(promptOpenDir, "Open directory", "")
	case keys.KeyRemove:
		it, ok := m.list.Selected()
		if !ok || it.Kind != ui.ItemFolder {
			return nil
		}
		if err := m.library.Remove(it.Path); err != nil {
			return m.handleError(err)
		}
		if err := m.refreshLauncher(); err != nil {
			return m.handleError(err)
		}
		return m.notify("removed " + it.Path + " from the library")
	}
	return nil
}

// activateSelected opens the selected launcher entry.
func (m *home) activateSelected() tea.Cmd {
	it, ok := m.list.Selected()
	if !ok {
		return nil
	}
	switch it.Kind {
	case ui.ItemOpenDir:
		m.showPrompt(promptOpenDir, "Open directory", "")
		return nil
	case ui.ItemArchive:
		return m.openArchive(it.Path)
	default:
		return m.openFolder(it.Path)
	}
}

func (m *home) handleViewerKey(name keys.KeyName) tea.Cmd {
	pane := m.tabbedWindow.Active()
	if pane == nil {
		return nil
	}
	switch name {
	case keys.KeyUp:
		pane.ScrollUp()
	case keys.KeyDown:
		pane.ScrollDown()
	case keys.KeyPageUp:
		pane.PageUp()
	case keys.KeyPageDown:
		pane.PageDown()
	case keys.KeyHome:
		pane.ScrollToTop()
	case keys.KeyEnd:
		pane.ScrollToBottom()
	case keys.KeyNextTab:
		m.tabbedWindow.Toggle()
	case keys.KeyPrevTab:
		m.tabbedWindow.ToggleReverse()
	case keys.KeyNextLink:
		pane.FocusLink(1)
	case keys.KeyPrevLink:
		pane.FocusLink(-1)
	case keys.KeyEnter:
		if _, err := pane.ActivateFocused(); err != nil {
			return m.handleError(err)
		}
	case keys.KeyCopyLink:
		link, ok := pane.FocusedLink()
		if !ok {
			return nil
		}
		if err := writeClipboard(link.URL); err != nil {
			return m.handleError(fmt.Errorf("failed to copy link: %w", err))
		}
		return m.notify("copied " + link.URL)
	case keys.KeyReload:
		if !pane.Loaded() {
			return nil
		}
		return m.renderCmd(pane)
	case keys.KeySaveFile:
		return m.saveToFile()
	case keys.KeySaveFolder:
		m.showPrompt(promptSaveFolder, "Save folder to", m.folder+"-copy")
	case keys.KeyInitIndex:
		idx, err := library.GenerateIndex(m.folder)
		if err != nil {
			return m.handleError(err)
		}
		return tea.Batch(
			m.notify(fmt.Sprintf("wrote %s with %d entries", library.IndexFileName, len(idx.Entries))),
			m.openFolder(m.folder),
		)
	case keys.KeyBack:
		return m.leaveFolder()
	}
	return nil
}

// openPath opens a folder or a saved archive given on the command line.
func (m *home) openPath(path string) tea.Cmd {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return m.handleError(err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return m.handleError(err)
	}
	if archive.IsArchive(abs) {
		return m.openArchive(abs)
	}
	return m.addAndOpen(abs)
}

// addAndOpen adds folder to the library and opens it.
func (m *home) addAndOpen(folder string) tea.Cmd {
	info, err := os.Stat(folder)
	if err != nil {
		return m.handleError(fmt.Errorf("cannot open %s: %w", folder, err))
	}
	if !info.IsDir() {
		return m.handleError(fmt.Errorf("cannot open %s: not a directory", folder))
	}
	if _, err := m.library.Add(folder); err != nil {
		return m.handleError(err)
	}
	if err := m.refreshLauncher(); err != nil {
		log.WarningLog.Printf("failed to refresh launcher: %v", err)
	}
	return m.openFolder(folder)
}

// openFolder shows one tab per document in folder and renders them all in
// the background.
func (m *home) openFolder(folder string) tea.Cmd {
	docs, err := library.Discover(folder)
	if err != nil {
		return m.handleError(err)
	}
	if len(docs) == 0 {
		return m.handleError(fmt.Errorf("no markdown documents in %s", folder))
	}

	panes := make([]*ui.DocumentPane, 0, len(docs))
	cmds := make([]tea.Cmd, 0, len(docs))
	for _, d := range docs {
		p := ui.NewDocumentPane(d.Path, d.Rel, folder, m.opener, m.theme, m.textOptions()...)
		panes = append(panes, p)
		cmds = append(cmds, m.renderCmd(p))
	}

	m.folder = folder
	m.revision = ""
	if rev, ok, err := library.FolderRevision(folder); err != nil {
		log.WarningLog.Printf("could not read revision of %s: %v", folder, err)
	} else if ok {
		m.revision = rev.Short()
	}
	m.tabbedWindow.SetDocuments(panes)
	m.state = stateViewer
	m.menu.SetState(ui.StateViewer)
	log.InfoLog.Printf("opened %s with %d documents", folder, len(docs))
	return tea.Batch(cmds...)
}

// openArchive unpacks a saved archive to a temporary folder and opens it.
func (m *home) openArchive(path string) tea.Cmd {
	dir, err := archive.UnpackToTemp(path)
	if err != nil {
		return m.handleError(err)
	}
	m.cleanup()
	m.tempDir = dir
	return m.openFolder(dir)
}

// leaveFolder closes the open folder and shows the launcher.
func (m *home) leaveFolder() tea.Cmd {
	m.tabbedWindow.SetDocuments(nil)
	m.folder = ""
	m.revision = ""
	m.cleanup()
	m.state = stateLauncher
	m.menu.SetState(ui.StateLauncher)
	if err := m.refreshLauncher(); err != nil {
		return m.handleError(err)
	}
	return nil
}

// textOptions configures how documents are drawn.
func (m *home) textOptions() []ui.StyledTextOption {
	opts := []ui.StyledTextOption{ui.WithImageWidth(m.appConfig.ImageMaxWidth)}
	if !m.hyperlinks() {
		opts = append(opts, ui.WithHyperlinks(nil))
	}
	return opts
}

// hyperlinks reports whether documents emit OSC 8 hyperlinks.
func (m *home) hyperlinks() bool {
	switch m.appConfig.OSC8 {
	case "on":
		return true
	case "off":
		return false
	default:
		return lipgloss.ColorProfile() != termenv.Ascii
	}
}

func (m *home) renderOptions() []markdown.RenderOption {
	return []markdown.RenderOption{
		markdown.WithParser(markdown.ParseParser(m.appConfig.Parser)),
		markdown.WithImageLoader(markdown.ImageLoader{Extended: m.appConfig.ExtendedImages}),
	}
}

// renderCmd renders the document of p off the event loop. The pane stays
// detached from its session until the result arrives.
func (m *home) renderCmd(p *ui.DocumentPane) tea.Cmd {
	p.BeginRender()
	opts := m.renderOptions()
	return func() tea.Msg {
		instrs, err := ui.LoadInstructions(p.Path, p.Base, p.Session, opts...)
		return renderDoneMsg{pane: p, instrs: instrs, err: err}
	}
}

func (m *home) handleRenderDone(msg renderDoneMsg) tea.Cmd {
	open := false
	for _, p := range m.tabbedWindow.Documents() {
		if p == msg.pane {
			open = true
			break
		}
	}
	if !open {
		// The folder was closed while the document rendered.
		return nil
	}
	msg.pane.Show(msg.instrs)
	if msg.err != nil {
		return m.handleError(msg.err)
	}
	return nil
}

// saveToFile packs the open folder into the storage directory.
func (m *home) saveToFile() tea.Cmd {
	format, err := archive.ParseFormat(m.appConfig.ArchiveFormat)
	if err != nil {
		return m.handleError(err)
	}
	folder, storageDir := m.folder, m.storageDir
	return func() tea.Msg {
		path, manifest, err := library.SaveToFile(storageDir, folder, &archive.PackOptions{Format: format})
		return savedMsg{path: path, manifest: manifest, err: err}
	}
}

// saveToFolder copies the open folder to dest.
func (m *home) saveToFolder(dest string) tea.Cmd {
	folder, lib := m.folder, m.library
	return func() tea.Msg {
		err := lib.SaveToFolder(folder, dest)
		return savedMsg{path: dest, err: err}
	}
}

func (m *home) handleSaved(msg savedMsg) tea.Cmd {
	if msg.err != nil {
		return m.handleError(msg.err)
	}
	if err := m.refreshLauncher(); err != nil {
		log.WarningLog.Printf("failed to refresh launcher: %v", err)
	}
	if msg.manifest == nil {
		return m.notify("saved to " + msg.path)
	}
	return m.notify(fmt.Sprintf("saved %d files (%s) to %s",
		len(msg.manifest.Files), humanize.Bytes(uint64(msg.manifest.TotalSize())), msg.path))
}

func (m *home) showPrompt(kind promptKind, title, initial string) {
	m.prompt = kind
	m.textInputOverlay = overlay.NewTextInputOverlay(title, initial)
	w, _ := m.overlaySize()
	m.textInputOverlay.SetWidth(w)
	m.state = statePrompt
	m.menu.SetState(ui.StatePrompt)
}

func (m *home) handlePromptState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.textInputOverlay == nil {
		m.closeOverlay()
		return m, nil
	}
	closed, cmd := m.textInputOverlay.HandleKeyPress(msg)
	if !closed {
		return m, cmd
	}

	submitted := m.textInputOverlay.Submitted
	value := strings.TrimSpace(m.textInputOverlay.Value())
	kind := m.prompt
	m.closeOverlay()
	if !submitted || value == "" {
		return m, nil
	}

	expanded, err := config.ExpandPath(value)
	if err != nil {
		return m, m.handleError(err)
	}
	path, err := filepath.Abs(expanded)
	if err != nil {
		return m, m.handleError(err)
	}
	switch kind {
	case promptSaveFolder:
		return m, m.saveToFolder(path)
	default:
		return m, m.addAndOpen(path)
	}
}

// handleTextOverlayState handles the help screen and the error log, which
// close on any key that does not scroll them.
func (m *home) handleTextOverlayState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.textOverlay == nil || m.textOverlay.HandleKeyPress(msg) {
		m.closeOverlay()
	}
	return m, nil
}

func (m *home) handleCommandLogState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "u":
		m.logPane.ToggleDistinct()
		return m, nil
	case "s":
		m.logPane.ToggleSort()
		return m, nil
	}
	if name, ok := keys.GetKeyName(msg.String()); ok {
		switch name {
		case keys.KeyUp:
			m.logPane.ScrollUp()
			return m, nil
		case keys.KeyDown:
			m.logPane.ScrollDown()
			return m, nil
		case keys.KeyPageUp:
			m.logPane.PageUp()
			return m, nil
		case keys.KeyPageDown:
			m.logPane.PageDown()
			return m, nil
		}
	}
	m.closeOverlay()
	return m, nil
}

func (m *home) showKeybindingEditor() (tea.Model, tea.Cmd) {
	kb, err := config.LoadKeyBindings()
	var cmd tea.Cmd
	if err != nil {
		cmd = m.handleError(err)
		kb = config.DefaultKeyBindings()
	}
	m.keybindingEditorOverlay = overlay.NewKeybindingEditorOverlay(kb)
	m.state = stateKeybindingEditor
	return m, cmd
}

func (m *home) handleKeybindingEditorState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.keybindingEditorOverlay == nil {
		m.closeOverlay()
		return m, nil
	}
	if !m.keybindingEditorOverlay.HandleKeyPress(msg) {
		return m, nil
	}

	saveErr := m.keybindingEditorOverlay.Err
	m.closeOverlay()

	// Reload keybindings and rebuild the menu around them.
	var cmds []tea.Cmd
	if saveErr != nil {
		cmds = append(cmds, m.handleError(saveErr))
	}
	if err := keys.InitializeCustomKeyBindings(); err != nil {
		log.ErrorLog.Printf("Failed to reload custom keybindings: %v", err)
	}
	m.menu = ui.NewMenu()
	m.menu.SetSize(m.width, 1)
	m.menu.SetState(m.menuState())
	return m, tea.Batch(cmds...)
}

func (m *home) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		m.scroll(msg.Button == tea.MouseButtonWheelUp)
	case tea.MouseButtonLeft:
		return m, m.handleClick(msg.X, msg.Y)
	}
	return m, nil
}

func (m *home) scroll(up bool) {
	switch m.state {
	case stateHelp, stateErrorLog:
		if m.textOverlay == nil {
			return
		}
		if up {
			m.textOverlay.ScrollUp()
		} else {
			m.textOverlay.ScrollDown()
		}
	case stateCommandLog:
		if up {
			m.logPane.ScrollUp()
		} else {
			m.logPane.ScrollDown()
		}
	case stateLauncher:
		if up {
			m.list.Up()
		} else {
			m.list.Down()
		}
	case stateViewer:
		pane := m.tabbedWindow.Active()
		if pane == nil {
			return
		}
		for i := 0; i < wheelLines; i++ {
			if up {
				pane.ScrollUp()
			} else {
				pane.ScrollDown()
			}
		}
	}
}

// handleClick opens the launcher entry, switches to the tab, or activates
// the link under the cell (x, y).
func (m *home) handleClick(x, y int) tea.Cmd {
	switch m.state {
	case stateLauncher:
		i, ok := m.list.ItemAt(y)
		if !ok || !m.list.Select(i) {
			return nil
		}
		return m.activateSelected()
	case stateViewer:
		if m.tabbedWindow.OnTabRow(y) {
			if i, ok := m.tabbedWindow.TabAt(x); ok {
				m.tabbedWindow.SetTab(i)
			}
			return nil
		}
		pane := m.tabbedWindow.Active()
		ox, oy := m.tabbedWindow.ContentOrigin()
		if pane == nil || x < ox || y < oy {
			return nil
		}
		if _, err := pane.Click(x-ox, y-oy); err != nil {
			return m.handleError(err)
		}
	}
	return nil
}

type keyupMsg struct{}

// keydownCallback clears the menu option highlighting after 500ms.
func (m *home) keydownCallback(name keys.KeyName) tea.Cmd {
	m.menu.Keydown(name)
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
		case <-time.After(500 * time.Millisecond):
		}

		return keyupMsg{}
	}
}

// hideErrMsg implements tea.Msg and clears the error text from the screen.
type hideErrMsg struct{}

// renderDoneMsg carries the result of a background render.
type renderDoneMsg struct {
	pane   *ui.DocumentPane
	instrs []markdown.Instruction
	err    error
}

// savedMsg reports a finished save to file or to folder.
type savedMsg struct {
	path     string
	manifest *archive.Manifest
	err      error
}

func (m *home) hideErrAfter(d time.Duration) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
		case <-time.After(d):
		}

		return hideErrMsg{}
	}
}

func (m *home) handleError(err error) tea.Cmd {
	log.ErrorLog.Printf("%v", err)
	m.errBox.SetError(err)

	// Store error in the error log with timestamp
	timestamp := time.Now().Format("15:04:05")
	m.errorLog = append(m.errorLog, fmt.Sprintf("[%s] %v", timestamp, err))
	if len(m.errorLog) > maxErrorLog {
		m.errorLog = m.errorLog[len(m.errorLog)-maxErrorLog:]
	}

	return m.hideErrAfter(3 * time.Second)
}

// notify shows a status message in the error box.
func (m *home) notify(text string) tea.Cmd {
	log.InfoLog.Print(text)
	m.errBox.SetError(errors.New(text))
	return m.hideErrAfter(3 * time.Second)
}

// status is shown under the document: a spinner while any document renders
// and the folder's git revision.
func (m *home) status() string {
	var parts []string
	for _, p := range m.tabbedWindow.Documents() {
		if !p.Loaded() {
			parts = append(parts, m.spinner.View()+" rendering")
			break
		}
	}
	if m.revision != "" {
		parts = append(parts, m.revision)
	}
	return strings.Join(parts, "  ")
}

var logBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("62")).
	Padding(1, 2)

func (m *home) View() string {
	var body string
	if m.screen() == stateViewer {
		m.tabbedWindow.SetStatus(m.status())
		body = m.tabbedWindow.String()
	} else {
		body = lipgloss.Place(m.width, max(m.height-2, 1), lipgloss.Left, lipgloss.Top, m.list.String())
	}

	mainView := lipgloss.JoinVertical(
		lipgloss.Left,
		body,
		m.menu.String(),
		m.errBox.String(),
	)

	switch m.state {
	case statePrompt:
		if m.textInputOverlay == nil {
			log.ErrorLog.Printf("text input overlay is nil")
			return mainView
		}
		return overlay.PlaceOverlay(0, 0, m.textInputOverlay.Render(), mainView, true, true)
	case stateHelp, stateErrorLog:
		if m.textOverlay == nil {
			log.ErrorLog.Printf("text overlay is nil")
			return mainView
		}
		return overlay.PlaceOverlay(0, 0, m.textOverlay.Render(), mainView, true, true)
	case stateCommandLog:
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Command Log"), "", m.logPane.String())
		return overlay.PlaceOverlay(0, 0, logBoxStyle.Render(content), mainView, true, true)
	case stateKeybindingEditor:
		if m.keybindingEditorOverlay == nil {
			log.ErrorLog.Printf("keybinding editor overlay is nil")
			return mainView
		}
		return overlay.PlaceOverlay(0, 0, m.keybindingEditorOverlay.Render(), mainView, true, true)
	}

	return mainView
}
