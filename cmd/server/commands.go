package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"course-classroom/internal/bootstrap"
	gormpersistence "course-classroom/internal/infra/persistence/gorm"
	"course-classroom/internal/infra/setup"
	"course-classroom/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "course-classroom",
	Short: "Real-time course classroom: chat, questions and announcements over WebSocket",
	Long:  `HTTP + WebSocket server with an asynq worker. Commands: serve, migrate, token, room, block.`,
	RunE:  runServe, // 默认运行服务
	// 错误由 main 统一记录
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP/WebSocket server and the broadcast worker",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue a bearer token for an existing user (development helper)",
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

var roomCmd = &cobra.Command{
	Use:   "room <course-id>",
	Short: "Open the chat room of a course and print its id",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoom,
}

var blockCmd = &cobra.Command{
	Use:   "block <course-id> <user-id>",
	Short: "Block a user from the chat room of a course",
	Args:  cobra.ExactArgs(2),
	RunE:  runBlock,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(roomCmd)
	rootCmd.AddCommand(blockCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := bootstrap.SetupLogger(cfg)

	app, err := bootstrap.NewApp(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		return err
	}
	log.Info("Shutdown signal received, application stopped")
	return nil
}

func runMigrate(_ *cobra.Command, _ []string) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	bootstrap.SetupLogger(cfg)

	db, err := setup.InitDB(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to init DB: %w", err)
	}
	if err := setup.MigrateDB(db); err != nil {
		return fmt.Errorf("failed to migrate DB: %w", err)
	}
	logrus.WithField("driver", cfg.DB.Driver).Info("Database migrated")
	return nil
}

func runToken(cmd *cobra.Command, args []string) error {
	userID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := setup.InitDB(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to init DB: %w", err)
	}
	userRepo := gormpersistence.NewGormUserRepository(db)
	if _, err := userRepo.FindByID(context.Background(), userID); err != nil {
		return fmt.Errorf("lookup user %s: %w", userID, err)
	}

	identities, err := service.NewIdentityResolver(userRepo, cfg.JWTSecret, cfg.JWTExpiryHours)
	if err != nil {
		return err
	}
	token, err := identities.IssueToken(userID)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

// newModerationService 打开数据库并组装 ModerationService，供 room/block 命令使用。
func newModerationService() (*service.ModerationService, error) {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	bootstrap.SetupLogger(cfg)

	db, err := setup.InitDB(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to init DB: %w", err)
	}
	return service.NewModerationService(
		gormpersistence.NewGormCourseRepository(db),
		gormpersistence.NewGormUserRepository(db),
		gormpersistence.NewGormChatRepository(db),
	), nil
}

func runRoom(cmd *cobra.Command, args []string) error {
	courseID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid course id: %w", err)
	}
	moderation, err := newModerationService()
	if err != nil {
		return err
	}
	room, err := moderation.OpenRoom(cmd.Context(), courseID)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), room.ID)
	return nil
}

func runBlock(cmd *cobra.Command, args []string) error {
	courseID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid course id: %w", err)
	}
	userID, err := uuid.Parse(args[1])
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	moderation, err := newModerationService()
	if err != nil {
		return err
	}
	room, err := moderation.BlockUser(cmd.Context(), courseID, userID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "blocked %s in room %s\n", userID, room.ID)
	return nil
}
