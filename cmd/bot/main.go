package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"standup-bot/internal/bot"
	"standup-bot/internal/config"
	"standup-bot/internal/handler"
	"standup-bot/internal/logger"
	"standup-bot/internal/middleware"
	"standup-bot/internal/model"
	"standup-bot/internal/platform"
	"standup-bot/internal/scheduler"
	"standup-bot/internal/scoreboard"
	"standup-bot/internal/service"
)

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/config-dev.yaml)")
	flag.Parse()

	cfg := config.Load(*configFile)
	logger.Init(cfg.Log)

	db, err := cfg.OpenGormDB()
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(&model.TeamMember{}, &model.Streak{}, &model.StatusUpdate{}, &model.WeeklyPost{}); err != nil {
		slog.Error("db migrate failed", "err", err)
		os.Exit(1)
	}

	memberSvc, err := service.NewMemberService(db)
	if err != nil {
		slog.Error("roster load failed", "err", err)
		os.Exit(1)
	}
	streakSvc := service.NewStreakService(db)
	updateSvc := service.NewUpdateService(db)
	authSvc := service.NewAuthService(db)
	aiSvc := service.NewAIService(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model)

	session, err := discordgo.New("Bot " + cfg.Discord.BotToken)
	if err != nil {
		slog.Error("discord session failed", "err", err)
		os.Exit(1)
	}

	channel := platform.NewDiscordChannel(session, cfg.Discord.ChannelID)
	board := scoreboard.NewController(channel, scoreboard.NewGormStateStore(db), streakSvc)
	checkinSvc := service.NewCheckinService(updateSvc, streakSvc, aiSvc, board)
	b := bot.New(session, cfg.Discord.ChannelID, memberSvc, checkinSvc)

	if err := b.Open(); err != nil {
		slog.Error("discord gateway failed", "err", err)
		os.Exit(1)
	}
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	if err := board.Initialize(ctx, memberSvc.All()); err != nil {
		slog.Warn("scoreboard init failed", "err", err)
	}
	cancel()

	sched := scheduler.New()
	defer sched.Stop()
	for _, m := range memberSvc.All() {
		if err := sched.AddMember(m, b.PromptStatus); err != nil {
			slog.Warn("member schedule failed", "member", m.Name, "err", err)
		}
	}
	rollover := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := board.CloseWeek(ctx); err != nil {
			slog.Error("close week failed", "err", err)
		}
		if err := board.Initialize(ctx, memberSvc.All()); err != nil {
			slog.Error("week rollover failed", "err", err)
		}
	}
	if err := sched.ScheduleWeeklyRollover(memberSvc.All(), rollover); err != nil {
		slog.Warn("rollover schedule failed", "err", err)
	}

	authH := handler.NewAuthHandler(authSvc)
	memberH := handler.NewMemberHandler(memberSvc, board, sched, b.PromptStatus, rollover)
	boardH := handler.NewScoreboardHandler(board, updateSvc, aiSvc)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.POST("/api/login", authH.Login)
	api := r.Group("/api", middleware.JWTAuth())
	api.GET("/members", memberH.List)
	api.POST("/members", memberH.Add)
	api.DELETE("/members/:id", memberH.Remove)
	api.PUT("/members/:id/timezone", memberH.UpdateTimeZone)
	api.PUT("/members/:id/vacation", memberH.SetVacation)
	api.GET("/scoreboard", boardH.Get)
	api.GET("/members/:id/updates", boardH.MemberUpdates)
	api.GET("/members/:id/weekly-summary", boardH.WeeklySummary)

	slog.Info("server starting", "addr", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		slog.Error("server failed", "err", err)
	}
}
