package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/MihaiMalos/elearning-client/config"
	"github.com/MihaiMalos/elearning-client/internal/api"
	"github.com/MihaiMalos/elearning-client/internal/cache"
	"github.com/MihaiMalos/elearning-client/internal/models"
	"github.com/MihaiMalos/elearning-client/internal/repository"
	"github.com/MihaiMalos/elearning-client/internal/session"
	"github.com/MihaiMalos/elearning-client/pkg/httpclient"
	"github.com/MihaiMalos/elearning-client/pkg/logger"
	"go.uber.org/zap"
)

const usageText = `Usage: elearn <command> [arguments]

Commands:
  login                      log in and persist the session
  register                   create a new account
  whoami                     show the logged-in user
  courses [query]            list courses, optionally filtered
  course <id>                show one course with materials and roster
  enroll <id>                enroll in a course
  unenroll <id>              drop the enrollment in a course
  chat <id>                  interactive AI tutor chat for a course
  upload <id> <file>...      upload materials to a course
  logout                     clear the local session
`

// app bundles everything the subcommands need.
type app struct {
	cfg      *config.Config
	session  *session.Store
	client   *api.Client
	authRepo *repository.AuthRepository
	courses  *repository.CourseRepository
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	env := "production"
	if cfg.IsDevelopment() {
		env = "development"
	}
	if err := logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: env,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	sessionStore := session.NewFileStore(cfg.Session.FilePath)
	httpClient := httpclient.NewAuthenticatedClient(sessionStore, cfg.API.Timeout)
	client := api.NewClient(cfg.API.BaseURL, httpClient)
	userCache := cache.NewUserCache(client, cfg.Cache.UserTTLSeconds)

	a := &app{
		cfg:      cfg,
		session:  sessionStore,
		client:   client,
		authRepo: repository.NewAuthRepository(client, sessionStore),
		courses:  repository.NewCourseRepository(client, sessionStore, userCache),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "elearn: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.cmdLogin(ctx)
	case "register":
		return a.cmdRegister(ctx)
	case "whoami":
		return a.cmdWhoami(ctx)
	case "courses":
		return a.cmdCourses(ctx, args)
	case "course":
		return a.cmdCourse(ctx, args)
	case "enroll":
		return a.cmdEnroll(ctx, args)
	case "unenroll":
		return a.cmdUnenroll(ctx, args)
	case "chat":
		return a.cmdChat(ctx, args)
	case "upload":
		return a.cmdUpload(ctx, args)
	case "logout":
		return a.cmdLogout()
	case "help", "-h", "--help":
		fmt.Print(usageText)
		return nil
	default:
		fmt.Fprint(os.Stderr, usageText)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) cmdLogin(ctx context.Context) error {
	username, err := prompt("Username: ")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	if err := a.authRepo.Login(ctx, username, password); err != nil {
		return err
	}

	fmt.Println("Logged in.")
	if user, err := a.authRepo.CurrentUser(ctx); err == nil {
		fmt.Printf("Welcome, %s (%s)\n", user.Username, user.Role)
	}
	return nil
}

func (a *app) cmdRegister(ctx context.Context) error {
	email, err := prompt("Email: ")
	if err != nil {
		return err
	}
	username, err := prompt("Username: ")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	roleInput, err := prompt("Role (teacher/student): ")
	if err != nil {
		return err
	}

	user, err := a.authRepo.Register(ctx, api.RegisterRequest{
		Email:    email,
		Username: username,
		Password: password,
		Role:     models.UserRole(strings.ToLower(roleInput)),
	})
	if err != nil {
		return err
	}
	fmt.Printf("Registered %s (id %d). Run `elearn login` to sign in.\n", user.Username, user.ID)
	return nil
}

func (a *app) cmdWhoami(ctx context.Context) error {
	if !a.authRepo.IsLoggedIn() {
		fmt.Println("Not logged in.")
		return nil
	}
	user, err := a.authRepo.CurrentUser(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s> role=%s id=%d\n", user.Username, user.Email, user.Role, user.ID)
	return nil
}

func (a *app) cmdCourses(ctx context.Context, args []string) error {
	search := strings.Join(args, " ")
	views, err := a.courses.ListCourses(ctx, search)
	if err != nil {
		return err
	}
	if len(views) == 0 {
		fmt.Println("No courses found.")
		return nil
	}
	for _, view := range views {
		marker := " "
		if view.IsEnrolled {
			marker = "*"
		}
		fmt.Printf("%s %4d  %-40s  %s (%d students, %d materials)\n",
			marker, view.Course.ID, view.Course.Title, view.Course.TeacherName,
			view.Course.EnrollmentCount, view.Course.MaterialsCount)
	}
	return nil
}

func (a *app) cmdCourse(ctx context.Context, args []string) error {
	id, err := courseIDArg(args)
	if err != nil {
		return err
	}

	course, err := a.courses.Course(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("%s (id %d)\nTeacher: %s\n", course.Title, course.ID, course.TeacherName)
	if course.Description != "" {
		fmt.Println(course.Description)
	}

	if count, err := a.courses.EnrollmentCount(ctx, id); err == nil {
		fmt.Printf("Enrolled students: %d\n", count)
	}

	if _, enrolled, err := a.courses.EnrollmentFor(ctx, id); err == nil && enrolled {
		fmt.Println("You are enrolled in this course.")
	}

	materials, err := a.courses.Materials(ctx, id)
	if err != nil {
		logger.Warn("Failed to list materials", zap.Int("course_id", id), zap.Error(err))
	} else if len(materials) > 0 {
		fmt.Println("\nMaterials:")
		for _, material := range materials {
			fmt.Printf("  %4d  %-40s  %s  %d bytes\n",
				material.ID, material.OriginalFileName, material.MimeType, material.FileSizeBytes)
		}
	}

	participants, err := a.courses.Participants(ctx, course)
	if err == nil && len(participants) > 0 {
		fmt.Println("\nParticipants:")
		for _, user := range participants {
			fmt.Printf("  %s (%s)\n", user.Username, user.Role)
		}
	}
	return nil
}

func (a *app) cmdEnroll(ctx context.Context, args []string) error {
	id, err := courseIDArg(args)
	if err != nil {
		return err
	}
	enrollment, err := a.courses.Enroll(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("Enrolled in %q (enrollment %d).\n", enrollment.CourseTitle, enrollment.ID)
	return nil
}

func (a *app) cmdUnenroll(ctx context.Context, args []string) error {
	id, err := courseIDArg(args)
	if err != nil {
		return err
	}
	enrollment, enrolled, err := a.courses.EnrollmentFor(ctx, id)
	if err != nil {
		return err
	}
	if !enrolled {
		return fmt.Errorf("not enrolled in course %d", id)
	}
	if err := a.courses.Unenroll(ctx, enrollment.ID); err != nil {
		return err
	}
	fmt.Println("Unenrolled.")
	return nil
}

func (a *app) cmdChat(ctx context.Context, args []string) error {
	id, err := courseIDArg(args)
	if err != nil {
		return err
	}

	fmt.Println("Ask the AI tutor about this course. Empty line or Ctrl-D to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			break
		}

		answer, err := a.client.SendChatMessage(ctx, api.ChatRequest{
			CourseID: id,
			Question: question,
		})
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		fmt.Println(answer.Answer)
		if answer.RetrievedChunks > 0 {
			fmt.Printf("(based on %d passages from the course materials)\n", answer.RetrievedChunks)
		}
	}
	return scanner.Err()
}

func (a *app) cmdUpload(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: elearn upload <course-id> <file>...")
	}
	id, err := courseIDArg(args[:1])
	if err != nil {
		return err
	}

	var files []api.UploadFile
	var handles []*os.File
	defer func() {
		for _, h := range handles {
			h.Close()
		}
	}()
	for _, path := range args[1:] {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		handles = append(handles, f)
		files = append(files, api.UploadFile{
			Name:    filepath.Base(path),
			Content: f,
		})
	}

	result, err := a.courses.UploadMaterials(ctx, id, files)
	if err != nil {
		return err
	}
	fmt.Printf("Uploaded %d of %d files.\n", len(result.Uploaded), result.TotalFiles)
	for _, failed := range result.FailedFiles {
		fmt.Printf("  failed: %s\n", failed)
	}
	return nil
}

func (a *app) cmdLogout() error {
	if err := a.authRepo.Logout(); err != nil {
		return err
	}
	a.courses.ClearCaches()
	fmt.Println("Logged out.")
	return nil
}

func courseIDArg(args []string) (int, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("missing course id")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid course id %q", args[0])
	}
	return id, nil
}

func prompt(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(label string) (string, error) {
	fmt.Print(label)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	return prompt("")
}
