//go:build !windows

package mvc

import (
	"context"
	"github.com/luomingyu/sparrow-go"
	"github.com/luomingyu/sparrow-go/graceful"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
)

func Serve(servers ...*Server) {
	type Option struct {
		listener net.Listener
		server   *http.Server
		vaild    bool
	}
	optionMap := make(map[string]*Option)
	gracefulStr := commandLineGraceful()
	if gracefulStr != "" {
		//热更新重启时, 子进程从fd 3开始继承父进程传下来的socket
		//0 1 2被标准输入输出占用, 其他fd要在fork前手动放到ExtraFiles里
		addrs := strings.Split(gracefulStr, ",")
		for i, addr := range addrs {
			if listener, err := net.FileListener(os.NewFile(3+uintptr(i), "")); err == nil {
				optionMap[strings.TrimSpace(addr)] = &Option{
					listener: listener,
				}
			}
		}
	}
	for i, server := range servers {
		addr := strings.TrimSpace(server.Addr)
		certFile := strings.TrimSpace(server.CertFile)
		keyFile := strings.TrimSpace(server.KeyFile)
		if addr == "" {
			sparrow.CommonLog.Fatal("第" + strconv.Itoa(i) + "个server还未设置Addr")
		}
		if server.Router == nil {
			sparrow.CommonLog.Fatal(addr + " 还未设置Router")
		}
		var handlerFunc = func(server *Server) http.HandlerFunc {
			return func(w http.ResponseWriter, req *http.Request) {
				routeHandle(server, w, req)
			}
		}
		httpServer := &http.Server{Addr: addr, Handler: handlerFunc(server), ErrorLog: log.New(sparrow.ErrorLog.Out, "", 0)}
		if server.Prepare != nil {
			server.Prepare(server, httpServer)
		}
		var listener net.Listener
		if option, ok := optionMap[addr]; ok {
			option.server = httpServer
			option.vaild = true
			listener = option.listener
		}
		if listener == nil {
			//多个listener(tcp或文件描述符)监听同一个端口不会同时生效，只有一个失效下一个才自动生效
			listen, err := net.Listen("tcp", addr)
			if err != nil {
				sparrow.CommonLog.Fatal("mvc("+addr+"): 启动失败", err)
			}
			optionMap[addr] = &Option{
				listener: listen,
				server:   httpServer,
				vaild:    true,
			}
			listener = listen
		}
		if listener != nil {
			go func() {
				sparrow.CommonLog.Info("mvc(" + addr + "): 启动成功")
				//不要把 server.Serve() 放在主协程里
				if certFile != "" && keyFile != "" {
					httpServer.ServeTLS(listener, certFile, keyFile)
				} else {
					httpServer.Serve(listener)
				}
			}()
		}
	}
	var files []graceful.File
	var httpServer []*http.Server
	for addr, item := range optionMap {
		//没有用的 listener 就取消
		if !item.vaild {
			item.listener.Close()
			sparrow.CommonLog.Info("mvc(" + addr + "): 关闭成功")
			continue
		}
		file, fileErr := item.listener.(*net.TCPListener).File()
		if fileErr != nil {
			sparrow.CommonLog.Fatal(fileErr)
		}
		files = append(files, graceful.File{
			File: file,
			Addr: addr,
		})
		httpServer = append(httpServer, item.server)
	}
	graceful.SignalHandler(files, func(ctx context.Context) {
		for _, server := range httpServer {
			server.Shutdown(ctx)
		}
	})
}
