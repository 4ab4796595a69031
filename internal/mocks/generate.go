package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Writer --dir ../domain/player --output domain/player --outpkg playermock --filename writer_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Writer --dir ../domain/tournament --output domain/tournament --outpkg tournamentmock --filename writer_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Writer --dir ../domain/result --output domain/result --outpkg resultmock --filename writer_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Writer --dir ../domain/leaderboard --output domain/leaderboard --outpkg leaderboardmock --filename writer_mock.go
