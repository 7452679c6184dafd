package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/fieldforce/internal/adapters/http/api"
	"github.com/okian/fieldforce/internal/adapters/repository"
	service "github.com/okian/fieldforce/internal/app"
	"github.com/okian/fieldforce/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRunCommand(t *testing.T) {
	Convey("Given a tracker and the run command", t, func() {
		So(logger.Init(), ShouldBeNil)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		store := repository.NewMemoryStore()
		So(store.Load(ctx, repository.DefaultFixtures(time.Now())), ShouldBeNil)
		svc := service.New(store, service.WithWorkerCount(2))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(context.Background()) }()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("When it runs against the tracker", func() {
			var out, errOut bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetErr(&errOut)
			rootCmd.SetArgs([]string{"run", "--url", srv.URL, "--members", "1,2", "--samples", "5", "--workers", "2", "--interval", "1s"})
			err := rootCmd.ExecuteContext(ctx)

			Convey("Then the summary is printed", func() {
				So(err, ShouldBeNil)
				So(out.String(), ShouldContainSubstring, "10 generated, 10 accepted")
				So(out.String(), ShouldContainSubstring, "In field:")
			})
		})

		Convey("When a flag is malformed", func() {
			rootCmd.SetOut(&bytes.Buffer{})
			rootCmd.SetErr(&bytes.Buffer{})
			rootCmd.SetArgs([]string{"run", "--samples", "many"})

			Convey("Then the command fails", func() {
				So(rootCmd.ExecuteContext(ctx), ShouldNotBeNil)
			})
		})
	})
}
