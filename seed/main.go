package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"aira/config"
	"aira/database"
	appointmentRepo "aira/database/repository/appointment"
	patientRepo "aira/database/repository/patient"
	"aira/models"
	"aira/services/booking"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	sampleNames   = []string{"Asha Nair", "Rahul Menon", "Fathima Beevi", "Arjun Pillai", "Meera Krishnan", "Vikram Singh", "Lakshmi Iyer"}
	sampleReasons = []string{"cleaning", "tooth pain", "root canal follow-up", "braces consultation", "filling", "check-up"}
	sampleLangs   = []string{"en", "ml", "hi", "ta"}
)

func main() {
	days := flag.Int("days", 7, "number of days to seed, starting tomorrow")
	perDay := flag.Int("per-day", 6, "appointments to attempt per day")
	reset := flag.Bool("reset", true, "clear existing appointments first")
	flag.Parse()

	config.LoadConfig()
	database.InitDB()
	defer database.Close(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	coll := database.DB().Collection("appointments")
	if *reset {
		if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
			log.Fatalf("Failed to clear appointments collection: %v", err)
		}
	}

	hours, err := booking.HoursFromConfig(config.AppConfig)
	if err != nil {
		log.Fatalf("Invalid clinic hours: %v", err)
	}
	repo := appointmentRepo.NewMongoAppointmentRepoWithCollection(coll)
	svc := booking.NewDefaultAppointmentService(booking.DefaultAppointmentService{
		Repo:     repo,
		Patients: patientRepo.NewMongoPatientRepo(),
		Engine:   booking.NewAvailabilityEngine(repo, hours),
	})

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	created, skipped := 0, 0
	start := time.Now().In(hours.Location).AddDate(0, 0, 1)

	for d := 0; d < *days; d++ {
		date := start.AddDate(0, 0, d).Format("2006-01-02")
		slots, err := svc.GetAvailableSlots(ctx, date, 0)
		if err != nil {
			log.Fatalf("Failed to list slots for %s: %v", date, err)
		}
		rng.Shuffle(len(slots), func(i, j int) { slots[i], slots[j] = slots[j], slots[i] })

		for i := 0; i < *perDay && i < len(slots); i++ {
			in := models.AppointmentInput{
				PatientName:       sampleNames[rng.Intn(len(sampleNames))],
				PatientPhone:      fmt.Sprintf("+9198%08d", rng.Intn(100000000)),
				AppointmentDate:   date,
				AppointmentTime:   slots[i],
				Reason:            sampleReasons[rng.Intn(len(sampleReasons))],
				PreferredLanguage: sampleLangs[rng.Intn(len(sampleLangs))],
			}
			appt, err := svc.CreateAppointment(ctx, in)
			if errors.Is(err, booking.ErrSlotUnavailable) {
				// An earlier pick's buffer covers this slot.
				skipped++
				continue
			}
			if err != nil {
				log.Fatalf("Failed to create appointment: %v", err)
			}
			created++
			fmt.Printf("Created %s %s %s for %s\n", appt.ID, appt.AppointmentDate, appt.AppointmentTime, appt.PatientName)
		}
	}

	fmt.Printf("Seeded %d appointments (%d slots skipped)\n", created, skipped)
}
