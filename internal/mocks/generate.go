// Package mocks holds gomock doubles for the repository and mail ports.
package mocks

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=user_repository_mock.go github.com/campushub/eventhub/internal/core UserRepository
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=club_repository_mock.go github.com/campushub/eventhub/internal/core ClubRepository
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=event_repository_mock.go github.com/campushub/eventhub/internal/core EventRepository
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=registration_repository_mock.go github.com/campushub/eventhub/internal/core RegistrationRepository
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=notification_repository_mock.go github.com/campushub/eventhub/internal/core NotificationRepository
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=mail_sender_mock.go github.com/campushub/eventhub/internal/ports MailSender
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=mail_queue_mock.go github.com/campushub/eventhub/internal/ports MailQueue
