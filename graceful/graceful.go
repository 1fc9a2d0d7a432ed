package graceful

import (
	"context"
	"github.com/luomingyu/sparrow-go"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
)

// SignalHandler 阻塞等信号: SIGINT/SIGTERM平滑退出, SIGUSR2热更新,
// 热更新通过fork子进程并把listener的fd传下去, 老进程随后退出
func SignalHandler(files []File, callback func(ctx context.Context)) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR2)
	for {
		sig := <-ch
		ctx := context.Background()
		switch sig {
		case syscall.SIGINT, syscall.SIGTERM:
			signal.Stop(ch)
			callback(ctx)
			sparrow.CommonLog.Info("程序退出成功")
			return
		case syscall.SIGUSR2:
			err := reload(files)
			callback(ctx)
			if err != nil {
				sparrow.CommonLog.Info("程序热更新异常", err)
			} else {
				sparrow.CommonLog.Info("程序热更新成功")
			}
			return
		}
	}
}

func reload(files []File) error {
	var graceful []string
	var extraFiles []*os.File
	for _, item := range files {
		graceful = append(graceful, strings.TrimSpace(item.Addr))
		extraFiles = append(extraFiles, item.File)
	}
	args := []string{"-graceful", strings.Join(graceful, ",")}
	cmd := exec.Command(os.Args[0], args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	//socket的fd放进ExtraFiles, 子进程从fd 3开始继承
	cmd.ExtraFiles = extraFiles
	//Start不等子进程结束
	return cmd.Start()
}
