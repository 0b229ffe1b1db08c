package controller

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"

	"github.com/oshokin/alarm-ap/internal/api/grpc/operator"
	"github.com/oshokin/alarm-ap/internal/logger"
)

// startOperator serves the operator API until the returned stop function is called.
func startOperator(ctx context.Context, listenAddress string, controller operator.Controller) (func(), error) {
	ctx = logger.WithName(ctx, "operator")

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer()
	operator.Register(grpcServer, operator.NewServer(controller))

	done := make(chan struct{})

	go func() {
		defer close(done)

		if serveErr := grpcServer.Serve(lis); serveErr != nil && !errors.Is(serveErr, grpc.ErrServerStopped) {
			logger.ErrorKV(ctx, "Operator endpoint failed", "error", serveErr)
		}
	}()

	logger.InfoKV(ctx, "Operator endpoint listening", "listen_address", lis.Addr().String())

	return func() {
		grpcServer.GracefulStop()
		<-done
		logger.Info(ctx, "Operator endpoint stopped")
	}, nil
}
