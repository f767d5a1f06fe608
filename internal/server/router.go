package server

import (
	handler "car-auction/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application. Read routes
// are public and serve masked phone numbers; write routes except bidding
// require the admin token.
func SetupRouter(auctionService handler.AuctionServiceInterface, adminToken string) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(PrivilegedCallerMiddleware(adminToken))

	auctionHandler := handler.NewAuctionHandler(auctionService)

	auctions := router.Group("/auctions")
	{
		auctions.GET("", auctionHandler.ListAuctionsHandler)
		auctions.GET("/:auction_id", auctionHandler.GetAuctionHandler)
		auctions.POST("/:auction_id/bids", auctionHandler.PlaceBidHandler)
		auctions.PUT("/:auction_id", RequireAdmin, auctionHandler.UpdateAuctionHandler)
		auctions.DELETE("/:auction_id", RequireAdmin, auctionHandler.DeleteAuctionHandler)
		auctions.DELETE("/:auction_id/bids/:bid_id", RequireAdmin, auctionHandler.RemoveBidHandler)
	}

	cars := router.Group("/cars")
	{
		cars.GET("/:car_id/auction", auctionHandler.GetAuctionForCarHandler)
		cars.POST("/:car_id/auction", RequireAdmin, auctionHandler.CreateAuctionHandler)
		cars.DELETE("/:car_id/auction", RequireAdmin, auctionHandler.DeleteAuctionForCarHandler)
	}

	return router
}
