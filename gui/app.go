package gui

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/guslan/chip8"
)

const (
	ToolbarGap       = 5
	ToolbarBtnWidth  = 80
	ToolbarBtnHeight = 40
	ToolbarHeight    = 50
	ToolbarBtnOffset = ToolbarBtnWidth + ToolbarGap

	DefaultPixelSize = 15

	MessageBarGap   = 5
	MessageBarHeigh = 30
)

var MessageBarBgColor = rl.DarkGray
var MessageBarInfoColor = rl.SkyBlue
var MessageBarSuccessColor = rl.Lime
var MessageBarWarningColor = rl.Gold
var MessageBarErrorColor = rl.Red

type MessageType byte

const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageWarning
	MessageError
)

// keypadRunes are the characters bound to the keypad, see chip8.KeyByRune
const keypadRunes = "1234qwerasdfzxcv"

type AppConfig struct {
	Speed     uint
	Theme     chip8.Theme
	PixelSize int32
	Console   []chip8.ConsoleConfigCb
}

type AppConfigCb func(config *AppConfig)

// App is a desktop window driving a console
type App struct {
	console *chip8.Console
	theme   chip8.Theme

	// Speed in Hz, kept as float for the slider
	speed float32
	// Latest screen received from the console
	screen    chip8.Screen
	isBuzzing bool

	keyboardLookupMap map[int32]byte

	pixelSize  int32
	winW, winH int32

	// Toolbar
	startBtn, stopBtn, restBtn bool

	lastMessage      string
	lastMessageColor rl.Color
}

func NewApp(configs ...AppConfigCb) (*App, error) {
	config := AppConfig{
		Speed:     chip8.DefaultSpeed,
		Theme:     chip8.DefaultTheme,
		PixelSize: DefaultPixelSize,
	}
	for _, cb := range configs {
		cb(&config)
	}

	app := &App{
		theme:             config.Theme,
		pixelSize:         config.PixelSize,
		keyboardLookupMap: map[int32]byte{},
	}

	console, err := chip8.NewConsole(nil, append(config.Console, func(c *chip8.ConsoleConfig) {
		c.Speed = config.Speed
		c.Display = app
		c.Buzzer = app
	})...)
	if err != nil {
		return nil, err
	}
	app.console = console
	app.speed = float32(console.SpeedInHz())

	app.updateKeyboardLookupMap()
	app.updateWindowSize()

	return app, nil
}

// Run opens the window and drives the console from the UI loop until the window closes
func (app *App) Run(autostart bool) {
	if err := app.console.Boot(); err != nil {
		slog.Error("Error booting the console", slog.Any("error", err))
		app.showMessage(err.Error(), MessageError)
	}
	if !autostart || !app.console.HasProgram() {
		app.console.Stop()
	}

	rl.InitWindow(app.winW, app.winH, "chip8")
	defer rl.CloseWindow()

	rl.SetTargetFPS(chip8.FrameRate)
	for !rl.WindowShouldClose() {
		app.handleFileLoad()
		app.handleActions()
		app.handleKeyPress()
		app.updateConsoleSpeed()
		app.runFrame()

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)

		app.drawMessageBar()
		app.drawScreen()
		app.drawToolbar()

		rl.EndDrawing()
	}
}

func (app *App) Load(path string) {
	program, err := os.ReadFile(path)
	if err != nil {
		slog.Error("Error loading program", slog.String("path", path), slog.Any("error", err))
		app.showMessage(fmt.Sprintf("Could not read '%s'", filepath.Base(path)), MessageError)
		return
	}

	if err = app.console.Load(program); err != nil {
		slog.Error("Error loading program", slog.String("path", path), slog.Any("error", err))
		app.showMessage(err.Error(), MessageError)
		return
	}

	slog.Info("Program loaded", slog.String("path", path))
	app.showMessage(fmt.Sprintf("Program '%s' loaded", filepath.Base(path)), MessageSuccess)

	app.console.Start()
}

// Boot implements chip8.Display.
func (app *App) Boot() error {
	return nil
}

// Render implements chip8.Display.
func (app *App) Render(screen chip8.Screen) error {
	app.screen = screen
	return nil
}

// Play implements chip8.Buzzer.
func (app *App) Play() {
	app.isBuzzing = true
}

// Stop implements chip8.Buzzer.
func (app *App) Stop() {
	app.isBuzzing = false
}

func (app *App) updateWindowSize() {
	app.winW = chip8.ScreenWidth * app.pixelSize
	app.winH = chip8.ScreenHeight*app.pixelSize + ToolbarHeight + MessageBarHeigh
	slog.Info("Updating window size", slog.Int("width", int(app.winW)), slog.Int("height", int(app.winH)))
}

// raylib key codes of letters and digits are their uppercase ASCII values
func (app *App) updateKeyboardLookupMap() {
	for _, r := range keypadRunes {
		key, ok := chip8.KeyByRune(r)
		if !ok {
			continue
		}
		app.keyboardLookupMap[int32(unicode.ToUpper(r))] = key
	}
}

func (app *App) handleFileLoad() {
	if rl.IsFileDropped() {
		files := rl.LoadDroppedFiles()
		defer rl.UnloadDroppedFiles()

		slog.Info("Files were dropped", "files", strings.Join(files, ","))
		if len(files) > 0 {
			app.Load(files[0])
		}
	}
}

func (app *App) handleActions() {
	if app.startBtn {
		if app.console.HasProgram() {
			app.console.Start()
			slog.Info("Starting the console")
		} else {
			app.showMessage("There is no program loaded, drop one on the window", MessageWarning)
		}
	}
	if app.stopBtn {
		app.console.Stop()
		slog.Info("Stopping the console")
	}
	if app.restBtn {
		if err := app.console.Reset(); err != nil {
			app.showMessage(err.Error(), MessageWarning)
		} else {
			slog.Info("Resetting the program to the beginning")
			app.showMessage("Program reset", MessageInfo)
		}
	}
}

func (app *App) handleKeyPress() {
	if !app.console.HasProgram() {
		return
	}

	for scanCode, key := range app.keyboardLookupMap {
		down := rl.IsKeyDown(scanCode)
		if down == app.console.IsKeyPressed(key) {
			continue
		}
		if err := app.console.SetKey(key, down); err != nil {
			slog.Warn("Error forwarding key", slog.Int("key", int(key)), slog.Any("error", err))
		}
	}
}

func (app *App) updateConsoleSpeed() {
	app.console.SetSpeedInHz(uint(app.speed))
}

func (app *App) runFrame() {
	if !app.console.HasProgram() || !app.console.IsRunning() {
		return
	}

	halted, err := app.console.RunFrame()
	if err != nil {
		app.console.Stop()
		slog.Error("Program faulted", slog.Any("error", err))
		app.showMessage(err.Error(), MessageError)
		return
	}
	if halted {
		app.console.Stop()
		app.showMessage("Program halted, press Reset to run it again", MessageWarning)
	}
}

const (
	MinSpeed = float32(chip8.MinSpeed)
	MaxSpeed = float32(chip8.MaxSpeed)
)

func (app *App) drawToolbar() {
	rl.DrawRectangle(0, 0, int32(rl.GetScreenWidth()), ToolbarHeight, rl.Gray)

	gui.Label(
		rl.NewRectangle(ToolbarGap, 26, 50, 20),
		fmt.Sprintf("%.0f Hz", app.speed),
	)

	if gui.Button(
		rl.NewRectangle(ToolbarGap+50, 26, 50, 20),
		gui.IconText(gui.ICON_ROTATE, ""),
	) {
		app.speed = float32(chip8.DefaultSpeed)
	}

	app.speed = gui.Slider(
		rl.NewRectangle(ToolbarGap*6, ToolbarGap, 100, 20),
		fmt.Sprintf("%d Hz", chip8.MinSpeed), fmt.Sprintf("%d Hz", chip8.MaxSpeed),
		app.speed,
		MinSpeed,
		MaxSpeed,
	)

	status := "Stopped"
	switch {
	case app.console.IsHalted():
		status = "Halted"
	case app.console.IsRunning():
		status = "Running"
	}
	if app.isBuzzing {
		status += " (beep)"
	}
	gui.Label(
		rl.NewRectangle(float32(app.winW)-5*ToolbarBtnOffset, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		status,
	)

	app.startBtn = gui.Button(
		rl.NewRectangle(float32(app.winW)-3*ToolbarBtnOffset, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_PLAY, "Start"),
	)
	app.stopBtn = gui.Button(
		rl.NewRectangle(float32(app.winW)-2*ToolbarBtnOffset, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_STOP, "Stop"),
	)
	app.restBtn = gui.Button(
		rl.NewRectangle(float32(app.winW)-1*ToolbarBtnOffset, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_ROTATE, "Reset"),
	)
}

func (app *App) drawScreen() {
	on := rl.NewColor(app.theme.On.R, app.theme.On.G, app.theme.On.B, app.theme.On.A)
	off := rl.NewColor(app.theme.Off.R, app.theme.Off.G, app.theme.Off.B, app.theme.Off.A)

	for y := 0; y < chip8.ScreenHeight; y++ {
		for x := 0; x < chip8.ScreenWidth; x++ {
			c := off
			if app.screen.Pixel(x, y) {
				c = on
			}
			rl.DrawRectangle(
				app.pixelSize*int32(x),
				ToolbarHeight+app.pixelSize*int32(y),
				app.pixelSize,
				app.pixelSize,
				c)
		}
	}
}

func (app *App) showMessage(msg string, mType MessageType) {
	app.lastMessage = msg
	switch mType {
	case MessageInfo:
		app.lastMessageColor = MessageBarInfoColor

	case MessageSuccess:
		app.lastMessageColor = MessageBarSuccessColor

	case MessageWarning:
		app.lastMessageColor = MessageBarWarningColor

	case MessageError:
		app.lastMessageColor = MessageBarErrorColor
	}
}

func (app *App) drawMessageBar() {
	rl.DrawRectangle(
		0,
		app.winH-MessageBarHeigh,
		app.winW,
		MessageBarHeigh,
		MessageBarBgColor,
	)

	rl.DrawText(
		app.lastMessage,
		MessageBarGap,
		app.winH-MessageBarHeigh+MessageBarGap,
		16,
		app.lastMessageColor,
	)
}
