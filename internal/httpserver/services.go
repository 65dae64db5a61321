package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// ServicesHTTP serves the community resources gated by the role and
// permission middleware; the payloads themselves are static.
type ServicesHTTP struct{}

func (ServicesHTTP) CCTV(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "CCTV footage access granted",
		"cameras": []echo.Map{
			{"id": 1, "location": "Main Entrance", "status": "Active"},
			{"id": 2, "location": "Parking Lot", "status": "Active"},
			{"id": 3, "location": "Back Door", "status": "Maintenance"},
		},
	})
}

func (ServicesHTTP) SecurityLogs(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "security logs access granted",
		"logs": []echo.Map{
			{"id": 1, "event": "Door Access", "timestamp": time.Now()},
			{"id": 2, "event": "Alarm Triggered", "timestamp": time.Now()},
		},
	})
}

func (ServicesHTTP) ElectricalPanel(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "electrical panel status",
		"panels": []echo.Map{
			{"id": 1, "zone": "Zone A", "status": "Normal", "power_consumption": "5.5 kW"},
			{"id": 2, "zone": "Zone B", "status": "High Load", "power_consumption": "8.2 kW"},
		},
	})
}

func (ServicesHTTP) MaintenanceSchedule(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "maintenance schedule access",
		"schedule": []echo.Map{
			{"id": 1, "task": "AC Maintenance", "date": "2024-03-20"},
			{"id": 2, "task": "Generator Check", "date": "2024-03-25"},
		},
	})
}

func (ServicesHTTP) Amenities(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "available amenities",
		"amenities": []echo.Map{
			{"id": 1, "name": "Gym", "status": "Open", "timing": "6 AM - 10 PM"},
			{"id": 2, "name": "Swimming Pool", "status": "Maintenance", "timing": "7 AM - 8 PM"},
			{"id": 3, "name": "Park", "status": "Open", "timing": "24/7"},
		},
	})
}

func (ServicesHTTP) Notices(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "community notices",
		"notices": []echo.Map{
			{"id": 1, "title": "Monthly Meeting", "date": "2024-03-15", "priority": "High"},
			{"id": 2, "title": "Water Supply Maintenance", "date": "2024-03-18", "priority": "Medium"},
		},
	})
}

func (ServicesHTTP) AdminPanel(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "admin panel access granted"})
}

func (ServicesHTTP) ModeratorPanel(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "moderator panel access granted"})
}
