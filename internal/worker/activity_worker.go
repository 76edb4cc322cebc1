package worker

import (
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/service"
)

// StartActivityWorker registers the activity log handlers.
func StartActivityWorker(activityService *service.ActivityService) {
	if activityService == nil {
		return
	}
	activityService.RegisterHandlers()
}
