package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	grpcTransport "salonbook/internal/transport/grpc"
)

func main() {
	var (
		addr     = flag.String("addr", getenv("SALONBOOK_GRPC_ADDR", "127.0.0.1:50051"), "salonbook gRPC address")
		count    = flag.Int("count", 50, "number of bookings to attempt")
		days     = flag.Int("days", 30, "spread bookings over this many days starting today")
		seed     = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		complete = flag.Int("complete-pct", 40, "percentage of created bookings marked completed and rated")
	)
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("service", "salonbook-seed"))

	gofakeit.Seed(*seed)

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Error("grpc client failed", slog.Any("err", err), slog.String("addr", *addr))
		os.Exit(1)
	}
	defer conn.Close()

	client := grpcTransport.NewAppointmentsServiceClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	stats, err := seedBookings(ctx, log, client, *count, *days, *complete)
	if err != nil {
		log.Error("seed failed", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("seed complete",
		slog.Int("created", stats.created),
		slog.Int("conflicts", stats.conflicts),
		slog.Int("completed", stats.completed),
	)
}

type seedStats struct {
	created   int
	conflicts int
	completed int
}

func seedBookings(ctx context.Context, log *slog.Logger, client *grpcTransport.AppointmentsServiceClient, count, days, completePct int) (seedStats, error) {
	var stats seedStats

	cat, err := client.ListCatalog(ctx, &grpcTransport.ListCatalogRequest{})
	if err != nil {
		return stats, fmt.Errorf("list catalog: %w", err)
	}
	if len(cat.Employees) == 0 || len(cat.Services) == 0 {
		return stats, fmt.Errorf("catalog is empty")
	}
	if days < 1 {
		days = 1
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	for i := 0; i < count; i++ {
		emp := cat.Employees[gofakeit.Number(0, len(cat.Employees)-1)]
		svc := cat.Services[gofakeit.Number(0, len(cat.Services)-1)]
		date := today.AddDate(0, 0, gofakeit.Number(0, days-1))
		// Half-hour slots between 08:00 and 19:30.
		slot := gofakeit.Number(16, 39)

		req := &grpcTransport.CreateAppointmentRequest{
			Date:         date.Format("2006-01-02"),
			StartTime:    fmt.Sprintf("%02d:%02d", slot/2, (slot%2)*30),
			EmployeeName: emp.Name,
			ServiceName:  svc.Name,
		}
		callCtx := metadata.AppendToOutgoingContext(ctx, "idempotency-key", gofakeit.UUID())

		resp, err := client.CreateAppointment(callCtx, req)
		if status.Code(err) == codes.FailedPrecondition {
			stats.conflicts++
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("create appointment: %w", err)
		}
		stats.created++

		if gofakeit.Number(1, 100) > completePct {
			continue
		}
		id := resp.Appointment.Id
		if _, err := client.SetStatus(ctx, &grpcTransport.SetStatusRequest{AppointmentId: id, Status: "completed"}); err != nil {
			return stats, fmt.Errorf("complete appointment %s: %w", id, err)
		}
		rating := &grpcTransport.SubmitRatingRequest{
			AppointmentId: id,
			Rating:        int32(gofakeit.Number(1, 5)),
		}
		if gofakeit.Bool() {
			rating.Comment = gofakeit.RandomString([]string{"Rất hài lòng", "Nhân viên thân thiện", "Sẽ quay lại", "Hơi lâu"})
		}
		if _, err := client.SubmitRating(ctx, rating); err != nil {
			return stats, fmt.Errorf("rate appointment %s: %w", id, err)
		}
		stats.completed++

		log.Debug("seeded completed appointment", slog.String("appointment_id", id))
	}

	return stats, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
