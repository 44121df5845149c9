package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/chartinsight/internal/scheduler"
	"github.com/wonny/chartinsight/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

등록되는 작업:
- refresh_kr:  한국 장 마감 후 추적 중인 KOSPI/KOSDAQ 티커 갱신
- refresh_us:  미국 장 마감 후 추적 중인 US 티커 갱신
- maintenance: 매일 새벽 보존 기간 초과 아티팩트 정리

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/pipeline scheduler start
  go run ./cmd/pipeline scheduler list
  go run ./cmd/pipeline scheduler run refresh_kr`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runSchedulerStart,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  runSchedulerList,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedulerJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	fmt.Println("✅ Scheduler started")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func runSchedulerList(cmd *cobra.Command, args []string) error {
	sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}

	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Printf("Running job: %s\n", jobName)
	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	// RunJob fires the job on a background goroutine; for a one-off CLI
	// invocation we block until the run lands in the history.
	waitForRun(sched, jobName)
	return nil
}

// waitForRun polls the job history until the manual run finishes
func waitForRun(sched *scheduler.Scheduler, jobName string) {
	for {
		time.Sleep(time.Second)

		history, err := sched.GetJobHistory(jobName)
		if err != nil {
			return
		}
		if results := history.GetLatestResults(1); len(results) > 0 {
			r := results[0]
			if r.Success {
				fmt.Printf("✅ %s completed in %s\n", jobName, r.Duration)
			} else {
				fmt.Printf("❌ %s failed: %s\n", jobName, r.Error)
			}
			return
		}
	}
}

// initScheduler wires the pipeline stack and registers the domain jobs
func initScheduler() (*scheduler.Scheduler, error) {
	application, err := initApp()
	if err != nil {
		return nil, err
	}

	cfg := application.cfg
	log := application.log

	sched := scheduler.New(log)

	if err := sched.AddJob(jobs.NewKoreaRefreshJob(application.batch, cfg.DataDir, cfg.Scheduler.KoreaRefresh, log)); err != nil {
		return nil, err
	}
	if err := sched.AddJob(jobs.NewUSRefreshJob(application.batch, cfg.DataDir, cfg.Scheduler.USRefresh, log)); err != nil {
		return nil, err
	}
	if err := sched.AddJob(jobs.NewMaintenanceJob(application.sweeper, cfg.RetentionDays, cfg.Scheduler.MaintenanceSpec, log)); err != nil {
		return nil, err
	}

	return sched, nil
}
